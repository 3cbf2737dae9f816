package gridflux

import (
	"path/filepath"
	"sort"
	"time"

	"flux-tools/locate"

	"github.com/sirupsen/logrus"
)

// Dates returns the distinct UTC calendar dates in times, sorted.
func Dates(times []time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, t := range times {
		t = t.UTC()
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// DailyPattern is the glob for the MiCASA file of date under root, which is
// organised as <root>/<YYYY>/<MM>/.
func DailyPattern(root string, date time.Time) string {
	return filepath.Join(root,
		date.Format("2006"),
		date.Format("01"),
		"MiCASA_v1_flux_*"+date.Format("20060102")+".nc4")
}

// DailyFiles resolves exactly one file per date, in date order.
func DailyFiles(root string, dates []time.Time) ([]string, error) {
	logrus.Debug("Entered DailyFiles")
	paths := make([]string, 0, len(dates))
	for _, date := range dates {
		path, err := locate.SingleMatch(DailyPattern(root, date))
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	logrus.Infof("Located %d gridded files", len(paths))
	return paths, nil
}
