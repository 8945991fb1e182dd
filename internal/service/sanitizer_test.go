package service

import "testing"

func TestRenderContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{name: "空内容", content: "   ", expected: ""},
		{name: "单段落", content: "hello world", expected: "<p>hello world</p>"},
		{name: "多段落", content: "first\n\nsecond", expected: "<p>first</p>\n<p>second</p>"},
		{name: "段内换行", content: "line one\nline two", expected: "<p>line one<br>line two</p>"},
		{name: "Windows 换行", content: "a\r\n\r\nb", expected: "<p>a</p>\n<p>b</p>"},
		{name: "转义 HTML", content: "<script>alert('x')</script>", expected: "<p>&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;</p>"},
		{name: "多个空行", content: "a\n \n\n\nb", expected: "<p>a</p>\n<p>b</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderContent(tt.content); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestValidSlug(t *testing.T) {
	valid := []string{"go", "hello-world", "post-2024", "a1-b2-c3"}
	invalid := []string{"", "Hello", "hello--world", "-start", "end-", "with space", "under_score"}
	for _, slug := range valid {
		if !ValidSlug(slug) {
			t.Errorf("expected %q to be valid", slug)
		}
	}
	for _, slug := range invalid {
		if ValidSlug(slug) {
			t.Errorf("expected %q to be invalid", slug)
		}
	}
}
