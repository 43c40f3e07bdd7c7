package pickup

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"vivapickup/lib/scrapers/viva"
	"vivapickup/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int {
	return &v
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

var filterFixture = []viva.ListingEntry{
	{OriginalID: "1", Number: "N1", Created: "2025-01-02 10:00:00", Finished: intp(0)},
	{OriginalID: "2", Number: "N2", Created: "2025-01-02 23:59:59", Finished: intp(1)},
	{OriginalID: "3", Number: "N3", Created: "2025-01-03 00:00:00", Finished: intp(0)},
	{OriginalID: "4", Number: "N4", Created: "", Finished: intp(0)},
	{OriginalID: "5", Number: "N5", Created: "2025-01-02 08:00:00"},
}

func TestFilterByDate(t *testing.T) {
	out, err := Filter(filterFixture, Criteria{
		Mode:     ModeDate,
		Date:     day("2025-01-02"),
		Finished: FinishedAny,
	})
	require.NoError(t, err)

	// matches regardless of finished, original order kept, entry 4 is
	// excluded for its missing timestamp
	var numbers []string
	for _, e := range out {
		numbers = append(numbers, e.Number)
	}
	require.Equal(t, []string{"N1", "N2", "N5"}, numbers)
}

func TestFilterByDateWithStatus(t *testing.T) {
	any, err := Filter(filterFixture, Criteria{
		Mode: ModeDate, Date: day("2025-01-02"), Finished: FinishedAny,
	})
	require.NoError(t, err)

	for _, status := range []FinishedFilter{FinishedOpen, FinishedClosed} {
		out, err := Filter(filterFixture, Criteria{
			Mode: ModeDate, Date: day("2025-01-02"), Finished: status,
		})
		require.NoError(t, err)

		// a status filter yields a subset of the unfiltered result
		for _, e := range out {
			require.NotNil(t, e.Finished)
			require.Equal(t, int(status), *e.Finished)
			require.Contains(t, any, e)
		}
	}

	closed, err := Filter(filterFixture, Criteria{
		Mode: ModeDate, Date: day("2025-01-02"), Finished: FinishedClosed,
	})
	require.NoError(t, err)
	require.Len(t, closed, 1)
	require.Equal(t, "N2", closed[0].Number)
}

func TestFilterByOrderNumber(t *testing.T) {
	out, err := Filter(filterFixture, Criteria{
		Mode: ModeOrderNumber, Number: "N3", Finished: FinishedAny,
	})
	require.NoError(t, err)
	require.Empty(t, cmp.Diff([]viva.ListingEntry{filterFixture[2]}, out))

	// exact string equality, no prefix matching
	out, err = Filter(filterFixture, Criteria{
		Mode: ModeOrderNumber, Number: "N", Finished: FinishedAny,
	})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestFilterUnknownMode(t *testing.T) {
	_, err := Filter(filterFixture, Criteria{Mode: "orderDate"})
	require.Error(t, err)
}

func TestFilterRandomizedSubsetProperty(t *testing.T) {
	rndm := rand.New(rand.NewSource(7))
	statusSwitch := testutil.RandomSwitch(4, 4, 2)

	var entries []viva.ListingEntry
	for i := 0; i < 200; i++ {
		entry := viva.ListingEntry{
			OriginalID: fmt.Sprint(i),
			Number:     testutil.RandomDigits(rndm, 6),
			Created:    fmt.Sprintf("2025-01-%02d 12:00:00", 1+rndm.Intn(5)),
		}
		switch statusSwitch(rndm) {
		case 0:
			entry.Finished = intp(0)
		case 1:
			entry.Finished = intp(1)
		}
		entries = append(entries, entry)
	}

	target := day("2025-01-03")
	any, err := Filter(entries, Criteria{Mode: ModeDate, Date: target, Finished: FinishedAny})
	require.NoError(t, err)

	open, err := Filter(entries, Criteria{Mode: ModeDate, Date: target, Finished: FinishedOpen})
	require.NoError(t, err)
	closed, err := Filter(entries, Criteria{Mode: ModeDate, Date: target, Finished: FinishedClosed})
	require.NoError(t, err)

	require.LessOrEqual(t, len(open)+len(closed), len(any))
	for _, e := range any {
		created, ok := e.CreatedTime()
		require.True(t, ok)
		require.Equal(t, "2025-01-03", created.Format("2006-01-02"))
	}
}
