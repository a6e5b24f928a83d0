package api

import (
	"encoding/json"
	"html/template"
	"io/fs"
	"time"

	"github.com/vytor/valentine/internal/timefmt"
)

// LoadTemplates parses the layouts, pages and partials found in fsys.
func LoadTemplates(fsys fs.FS) (*template.Template, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		// seq returns a sequence of integers from start to end inclusive.
		"seq": func(start, end int) []int {
			if end < start {
				return []int{}
			}
			nums := make([]int, 0, end-start+1)
			for i := start; i <= end; i++ {
				nums = append(nums, i)
			}
			return nums
		},
		// percent renders a [0,1] volume as a whole percentage.
		"percent": func(v float64) int { return int(v*100 + 0.5) },
		"ist":     func(t time.Time) string { return timefmt.Display(t) },
		"json": func(v any) (template.JS, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return template.JS(b), nil
		},
	}

	t := template.New("base").Funcs(funcs)

	patterns := []string{
		"layouts/*.html",
		"pages/*.html",
		"partials/*.html",
	}
	for _, p := range patterns {
		if matches, _ := fs.Glob(fsys, p); len(matches) == 0 {
			continue
		}
		if _, err := t.ParseFS(fsys, p); err != nil {
			return nil, err
		}
	}

	return t, nil
}
