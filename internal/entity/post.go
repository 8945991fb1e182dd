package entity

import "time"

// DbPost is a blog article.
type DbPost struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Slug        string    `gorm:"column:slug;type:varchar(200);uniqueIndex;not null" json:"slug"`
	Excerpt     string    `gorm:"column:excerpt;type:text" json:"excerpt"`
	Content     string    `gorm:"column:content;type:text;not null" json:"content"`
	ContentHTML string    `gorm:"column:content_html;type:text" json:"content_html"`
	IsPublished bool      `gorm:"column:is_published;index;not null;default:false" json:"is_published"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CategoryID  uint      `gorm:"column:category_id;index;not null" json:"category_id"`
	AuthorID    uint      `gorm:"column:author_id;index;not null" json:"author_id"`

	Category *DbCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Author   *DbUser     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (DbPost) TableName() string {
	return "posts"
}

// ToSummary converts the post into its client representation.
func (p DbPost) ToSummary() PostSummary {
	out := PostSummary{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		ContentHTML: p.ContentHTML,
		IsPublished: p.IsPublished,
		CategoryID:  p.CategoryID,
		AuthorID:    p.AuthorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		category := p.Category.ToSummary()
		out.Category = &category
	}
	if p.Author != nil {
		out.Author = &PostAuthor{
			ID:        p.Author.ID,
			FirstName: p.Author.FirstName,
			LastName:  p.Author.LastName,
		}
	}
	return out
}

type PostAuthor struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type PostSummary struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Excerpt     string           `json:"excerpt"`
	Content     string           `json:"content"`
	ContentHTML string           `json:"content_html"`
	IsPublished bool             `json:"is_published"`
	CategoryID  uint             `json:"category_id"`
	AuthorID    uint             `json:"author_id"`
	Category    *CategorySummary `json:"category,omitempty"`
	Author      *PostAuthor      `json:"author,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// PostQuery supports listing posts with pagination.
type PostQuery struct {
	BaseParams
	CategoryID    uint `json:"-" form:"-" query:"-"`
	PublishedOnly bool `json:"-" form:"-" query:"-"`
}

type PostCreateRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Slug        string `json:"slug" binding:"required,min=1,max=200"`
	Excerpt     string `json:"excerpt"`
	Content     string `json:"content" binding:"required"`
	IsPublished bool   `json:"is_published"`
	CategoryID  uint   `json:"category_id" binding:"required"`
}

type PostUpdateRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=3,max=200"`
	Slug        *string `json:"slug,omitempty" binding:"omitempty,min=1,max=200"`
	Excerpt     *string `json:"excerpt,omitempty"`
	Content     *string `json:"content,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
	CategoryID  *uint   `json:"category_id,omitempty"`
}

type PostListResponse struct {
	Posts []PostSummary `json:"posts"`
	Meta  *Meta         `json:"meta"`
}
