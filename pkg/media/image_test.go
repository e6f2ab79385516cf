package media

import "testing"

func TestImageSize(t *testing.T) {
	cases := map[string]string{
		"//cdn.example.com/files/shirt_medium.jpg?v=1":   "medium",
		"//cdn.example.com/files/shirt_300x.png":         "300x",
		"//cdn.example.com/files/shirt_x120.png":         "x120",
		"//cdn.example.com/files/shirt_1024x1024@2x.png": "1024x1024",
		"//cdn.example.com/files/shirt.jpg":              "",
		"//cdn.example.com/files/shirt_blue.jpg":         "",
	}
	for src, want := range cases {
		if got := ImageSize(src); got != want {
			t.Fatalf("ImageSize(%q) = %q, want %q", src, got, want)
		}
	}
}

func TestSizedImageURL(t *testing.T) {
	cases := []struct {
		src, size string
		want      string
		ok        bool
	}{
		{"https://cdn.example.com/files/shirt.jpg?v=123", "grande", "//cdn.example.com/files/shirt_grande.jpg?v=123", true},
		{"//cdn.example.com/files/shirt.PNG", "300x", "//cdn.example.com/files/shirt_300x.PNG", true},
		{"http://cdn.example.com/files/shirt.jpg", MasterSize, "//cdn.example.com/files/shirt.jpg", true},
		{"https://cdn.example.com/files/shirt.jpg", "", "https://cdn.example.com/files/shirt.jpg", true},
		{"https://cdn.example.com/files/manual.pdf", "small", "", false},
	}
	for _, tc := range cases {
		got, ok := SizedImageURL(tc.src, tc.size)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("SizedImageURL(%q, %q) = %q/%v, want %q/%v", tc.src, tc.size, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPreloadSkipsUnknownURLs(t *testing.T) {
	got := Preload([]string{"//cdn.example.com/a.jpg", "//cdn.example.com/b.svg", "https://cdn.example.com/c.gif"}, "small")
	if len(got) != 2 || got[0] != "//cdn.example.com/a_small.jpg" || got[1] != "//cdn.example.com/c_small.gif" {
		t.Fatalf("unexpected preload list %v", got)
	}
}
