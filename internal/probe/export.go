package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/ladder/pkg/logger"
)

// maxSheetName is the longest sheet name a workbook accepts.
const maxSheetName = 31

var exportHeader = []any{
	"rank", "profile_id", "nickname", "level", "exp", "levelup_exp", "progress",
	"job", "job_tab", "popular", "daily_exp_diff", "weekly_exp_diff", "newly_listed",
}

// exportViews writes one sheet per fetched view. Empty cells mark absent
// values so the workbook reads back through the xlsx source unchanged.
func exportViews(ctx context.Context, filename string, views []Fetched) error {
	if len(views) == 0 {
		return fmt.Errorf("no views to export")
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close workbook", logger.Error(err))
		}
	}()

	first := f.GetSheetName(0)
	used := map[string]bool{}
	for i, v := range views {
		name := sheetName(v.Name, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %q: %w", name, err)
		}
		if err := writeRows(f, name, v); err != nil {
			return err
		}
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	logger.Get().Info(ctx, "views exported",
		logger.String("filename", filename),
		logger.Int("sheets", len(views)))
	return nil
}

func writeRows(f *excelize.File, sheet string, v Fetched) error {
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range v.View.Rows {
		row := []any{
			r.Rank, r.ProfileID, r.Nickname, r.Level, r.Experience, r.ExperienceToLevelUp, nil,
			r.Job, r.CategoryTab, r.Popularity, nil, r.WeeklyExpDelta, r.NewlyListed,
		}
		if r.Progress != nil {
			row[6] = *r.Progress
		}
		if r.DailyExpDelta != nil {
			row[10] = *r.DailyExpDelta
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return nil
}

// sheetName turns a view label into a unique, valid sheet name.
func sheetName(label string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, label)
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	base := name
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf(" %d", n)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[name] = true
	return name
}
