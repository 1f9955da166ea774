package flickr

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<p>hello <b>world</b></p>", "hello world"},
		{"line&nbsp;break &amp; entity", "line break & entity"},
		{`<a href="https://x">dwrenn</a> posted a photo: <img src="x.jpg">`, "dwrenn posted a photo:"},
		{"  <i>trimmed</i>  ", "trimmed"},
	}
	for _, tt := range tests {
		if got := stripHTML(tt.in); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
