package formatting

import (
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
)

func TestPrettyJSON(t *testing.T) {
	entry := FixtureEntry{Type: "Database", Scope: "class", Owner: "Tests", State: "ready", Refs: 2}
	assert.Equal(t, "{\n  \"type\": \"Database\",\n  \"scope\": \"class\",\n  \"owner\": \"Tests\",\n  \"state\": \"ready\",\n  \"refs\": 2\n}",
		PrettyJSON(entry))
	assert.Equal(t, "null", PrettyJSON(nil))

	// Unmarshalable values fall back to %v.
	assert.NotEmpty(t, PrettyJSON(make(chan int)))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"Adds(1, 2, 3, 4)", 10, "Adds(1,..."},
		{"héllo wörld", 8, "héllo..."},
		{"tiny", 3, "tiny"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.max))
		})
	}
}

func TestPaintAndJoin(t *testing.T) {
	assert.Equal(t, "plain", paint(false, text.FgRed, "plain"))
	assert.Equal(t, text.FgRed.Sprint("red"), paint(true, text.FgRed, "red"))
	assert.Equal(t, "1, \"a\"", joinArgs([]string{"1", `"a"`}))
	assert.Empty(t, joinArgs(nil))
}
