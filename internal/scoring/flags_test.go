package scoring

import (
	"testing"
	"time"

	"github.com/trendradar/trendradar/internal/models"
)

func TestDeriveFlags_Thresholds(t *testing.T) {
	now := time.Now()
	recent := now.Add(-24 * time.Hour)

	cases := []struct {
		score    int
		expected models.Flags
	}{
		{75, models.Flags{IsHot: true, IsEmerging: true}},
		{71, models.Flags{IsHot: true, IsEmerging: true}},
		{70, models.Flags{IsEmerging: true}}, // boundary: strictly greater than 70
		{55, models.Flags{IsEmerging: true}}, // mid-tier band carries neither hot nor niche
		{40, models.Flags{IsEmerging: true}}, // boundary: niche needs strictly less than 40
		{39, models.Flags{IsNiche: true, IsEmerging: true}},
		{30, models.Flags{IsNiche: true, IsEmerging: true}},
		{16, models.Flags{IsNiche: true}}, // below the emerging score threshold
		{15, models.Flags{}},              // boundary: niche needs strictly greater than 15
		{10, models.Flags{}},
	}

	for _, tc := range cases {
		got := DeriveFlags(tc.score, recent, now)
		if got != tc.expected {
			t.Errorf("score %d: expected %+v, got %+v", tc.score, tc.expected, got)
		}
	}
}

func TestDeriveFlags_EmergingWindow(t *testing.T) {
	now := time.Now()

	inside := DeriveFlags(50, now.Add(-100*24*time.Hour), now)
	if !inside.IsEmerging {
		t.Error("project updated 100 days ago with score 50 should be emerging")
	}

	outside := DeriveFlags(50, now.Add(-200*24*time.Hour), now)
	if outside.IsEmerging {
		t.Error("project updated 200 days ago should not be emerging")
	}

	lowScore := DeriveFlags(20, now.Add(-24*time.Hour), now)
	if lowScore.IsEmerging {
		t.Error("score 20 is not strictly above the emerging threshold")
	}

	unknown := DeriveFlags(90, time.Time{}, now)
	if unknown.IsEmerging {
		t.Error("unknown last-update date can never be emerging")
	}
}

func TestDeriveFlags_Deterministic(t *testing.T) {
	now := time.Now()
	updated := now.Add(-48 * time.Hour)

	first := DeriveFlags(33, updated, now)
	second := DeriveFlags(33, updated, now)
	if first != second {
		t.Errorf("same inputs produced different flags: %+v vs %+v", first, second)
	}
}
