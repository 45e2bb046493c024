package linkcheck

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCheckString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want *Result
	}{
		{
			name: "no links",
			in:   "<p>plain</p>",
			want: &Result{IDs: []string{}, Dangling: []string{}, Duplicates: []string{}},
		},
		{
			name: "resolved fragment and label",
			in:   `<p><label for="c" aria-describedby="n"><a href="#n">x</a></label></p><aside id="n"><output id="c"></output></aside>`,
			want: &Result{IDs: []string{"n", "c"}, Dangling: []string{}, Duplicates: []string{}},
		},
		{
			name: "dangling fragment reported once",
			in:   `<a href="#gone">1</a><a href="#gone">2</a><a href="#">top</a><a href="/x#y">ext</a>`,
			want: &Result{IDs: []string{}, Dangling: []string{"gone"}, Duplicates: []string{}},
		},
		{
			name: "duplicate ids",
			in:   `<p id="a"></p><p id="a"></p><p id="a"></p><p id="b"></p>`,
			want: &Result{IDs: []string{"a", "a", "a", "b"}, Dangling: []string{}, Duplicates: []string{"a"}},
		},
		{
			name: "dangling label target",
			in:   `<label for="missing">x</label>`,
			want: &Result{IDs: []string{}, Dangling: []string{"missing"}, Duplicates: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CheckString(tt.in)
			if err != nil {
				t.Fatalf("CheckString failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
			if got.OK() != (len(tt.want.Dangling) == 0 && len(tt.want.Duplicates) == 0) {
				t.Errorf("OK() = %v", got.OK())
			}
		})
	}
}
