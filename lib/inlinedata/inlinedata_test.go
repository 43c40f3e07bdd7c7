package inlinedata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractArray(t *testing.T) {
	page := `<html><script>
		var page = 1;
		var datalist = [{"a":1}];
	</script></html>`

	raw, err := Extract(page, "datalist")
	require.NoError(t, err)
	require.JSONEq(t, `[{"a":1}]`, string(raw))
}

func TestExtractObject(t *testing.T) {
	page := `<script>var data = {"PhoneCell":"555","items":[]};</script>`

	var out struct {
		PhoneCell string `json:"PhoneCell"`
	}
	err := Decode(page, "data", &out)
	require.NoError(t, err)
	require.Equal(t, "555", out.PhoneCell)
}

func TestExtractMultiline(t *testing.T) {
	page := "var datalist = [\n\t{\"Number\": \"N1\"},\n\t{\"Number\": \"N2\"}\n];"

	var out []struct {
		Number string `json:"Number"`
	}
	err := Decode(page, "datalist", &out)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "N2", out[1].Number)
}

func TestExtractNotFound(t *testing.T) {
	_, err := Extract("<html><body>no scripts here</body></html>", "datalist")
	require.ErrorIs(t, err, ErrNotFound)

	// an assignment for a different variable does not count
	_, err = Extract(`var data = {};`, "datalist")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExtractInvalidJSON(t *testing.T) {
	_, err := Extract(`var data = {PhoneCell: '555'};`, "data")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "data", parseErr.Variable)
}

func TestDecodeShapeMismatch(t *testing.T) {
	var out []any
	err := Decode(`var data = {"a":1};`, "data", &out)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestExtractStopsAtFirstTerminator(t *testing.T) {
	// documented fragility: the non-greedy match ends at the first `];`
	page := `var datalist = [{"a":"x"}]; var other = [1,2];`
	raw, err := Extract(page, "datalist")
	require.NoError(t, err)
	require.JSONEq(t, `[{"a":"x"}]`, string(raw))
}
