package scraper

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badminton-bot/config"
	"badminton-bot/types"
)

func testConfig() config.Config {
	return config.Config{
		FacilityID: 76443,
		Sport:      "badminton",
		CourtIDs:   []int{77394, 77395, 77396},
		WidgetURL:  "https://www.eversports.de/widget/w/c7o9ft",
		APIBase:    "https://www.eversports.de/widget/api/slot",
	}
}

func TestBuildURL(t *testing.T) {
	s := New(testConfig())
	u := s.BuildURL("2025-11-21")

	assert.Contains(t, u, "facilityId=76443")
	assert.Contains(t, u, "sport=badminton")
	assert.Contains(t, u, "startDate=2025-11-21")
	// повторяющийся courts[] на каждый корт (url-encoded)
	assert.Contains(t, u, "courts%5B%5D=77394")
	assert.Contains(t, u, "courts%5B%5D=77395")
	assert.Contains(t, u, "courts%5B%5D=77396")
}

func TestComputeFreeSlotsScenario(t *testing.T) {
	feed := []byte(`{"slots":[{"date":"2025-01-01","start":"1015","court":77394}]}`)
	grid := []string{"10:15"}

	free := ComputeFreeSlots(feed, "2025-01-01", grid, []int{77394, 77395, 77396})

	assert.Equal(t, types.FreeSlotsMap{"10:15": {77395, 77396}}, free)
}

func TestComputeFreeSlotsIgnoresOtherDates(t *testing.T) {
	// фид отдает окно дат, не ровно один день
	feed := []byte(`{"slots":[
		{"date":"2025-01-02","start":"1015","court":77394},
		{"date":"2025-01-02","start":"1015","court":77395},
		{"date":"2025-01-02","start":"1015","court":77396}
	]}`)
	grid := []string{"10:15"}

	free := ComputeFreeSlots(feed, "2025-01-01", grid, []int{77394, 77395, 77396})

	assert.Equal(t, types.FreeSlotsMap{"10:15": {77394, 77395, 77396}}, free)
}

func TestComputeFreeSlotsOmitsFullyBooked(t *testing.T) {
	feed := []byte(`{"slots":[
		{"date":"2025-01-01","start":"1015","court":77394},
		{"date":"2025-01-01","start":"1015","court":77395},
		{"date":"2025-01-01","start":"1015","court":77396}
	]}`)
	grid := []string{"10:15", "11:00"}

	free := ComputeFreeSlots(feed, "2025-01-01", grid, []int{77394, 77395, 77396})

	// слот без свободных кортов не хранится как пустой список
	_, ok := free["10:15"]
	assert.False(t, ok)
	assert.Equal(t, []int{77394, 77395, 77396}, free["11:00"])
}

func TestComputeFreeSlotsOffGridBookingIgnored(t *testing.T) {
	feed := []byte(`{"slots":[{"date":"2025-01-01","start":"0930","court":77394}]}`)
	grid := []string{"10:15"}

	free := ComputeFreeSlots(feed, "2025-01-01", grid, []int{77394, 77395, 77396})

	// запись вне сетки не фатальна и не влияет на результат
	assert.Equal(t, types.FreeSlotsMap{"10:15": {77394, 77395, 77396}}, free)
}

func TestComputeFreeSlotsMalformedStartNotFatal(t *testing.T) {
	// обрезанное или пустое время записи не должно ни ронять разбор,
	// ни влиять на результат - только мимо сетки с предупреждением
	feed := []byte(`{"slots":[
		{"date":"2025-01-01","start":"930","court":77394},
		{"date":"2025-01-01","start":"9","court":77394},
		{"date":"2025-01-01","start":"","court":77394}
	]}`)
	grid := []string{"10:15"}

	free := ComputeFreeSlots(feed, "2025-01-01", grid, []int{77394, 77395, 77396})

	assert.Equal(t, types.FreeSlotsMap{"10:15": {77394, 77395, 77396}}, free)
}

func TestComputeFreeSlotsMissingSlotsKey(t *testing.T) {
	free := ComputeFreeSlots([]byte(`{"unexpected":"shape"}`), "2025-01-01", []string{"10:15"}, []int{77394})
	assert.Empty(t, free)
}

func TestComputeFreeSlotsIdempotent(t *testing.T) {
	feed := []byte(`{"slots":[
		{"date":"2025-01-01","start":"1015","court":77394},
		{"date":"2025-01-01","start":"1100","court":77395}
	]}`)
	grid := []string{"10:15", "11:00", "11:45"}
	courts := []int{77394, 77395, 77396}

	first := ComputeFreeSlots(feed, "2025-01-01", grid, courts)
	second := ComputeFreeSlots(feed, "2025-01-01", grid, courts)

	assert.Equal(t, first, second)
}

func TestComputeFreeSlotsValuesAreNonEmptySubsets(t *testing.T) {
	feed := []byte(`{"slots":[
		{"date":"2025-01-01","start":"1015","court":77394},
		{"date":"2025-01-01","start":"1100","court":77395},
		{"date":"2025-01-01","start":"1100","court":77396}
	]}`)
	grid := []string{"10:15", "11:00"}
	courts := map[int]bool{77394: true, 77395: true, 77396: true}

	free := ComputeFreeSlots(feed, "2025-01-01", grid, []int{77394, 77395, 77396})

	for slot, ids := range free {
		require.NotEmpty(t, ids, "slot %s has empty court list", slot)
		for _, id := range ids {
			assert.True(t, courts[id], "slot %s has unknown court %d", slot, id)
		}
	}
}

func TestFetchBookedSlots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "76443", r.URL.Query().Get("facilityId"))
		assert.Equal(t, "2025-11-21", r.URL.Query().Get("startDate"))
		assert.Equal(t, []string{"77394", "77395", "77396"}, r.URL.Query()["courts[]"])
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))

		fmt.Fprint(w, `{"slots":[]}`)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.APIBase = srv.URL
	s := New(cfg)

	body, err := s.FetchBookedSlots("2025-11-21")
	require.NoError(t, err)
	assert.JSONEq(t, `{"slots":[]}`, string(body))
}

func TestFetchBookedSlotsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.APIBase = srv.URL
	s := New(cfg)

	_, err := s.FetchBookedSlots("2025-11-21")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetchBookedSlotsMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"slots": [broken`)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.APIBase = srv.URL
	s := New(cfg)

	_, err := s.FetchBookedSlots("2025-11-21")
	assert.Error(t, err)
}

func TestDiscoverCourtNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<div data-court="77394">Court 1</div>
			<div data-court="77395">
				Court
				2
			</div>
			<div data-court="bogus">ignored</div>
		</body></html>`)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.WidgetURL = srv.URL
	s := New(cfg)

	names, err := s.DiscoverCourtNames()
	require.NoError(t, err)
	assert.Equal(t, map[int]string{77394: "Court 1", 77395: "Court 2"}, names)
}

func TestDiscoverCourtNamesEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>nothing here</p></body></html>`)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.WidgetURL = srv.URL
	s := New(cfg)

	_, err := s.DiscoverCourtNames()
	assert.Error(t, err)
}
