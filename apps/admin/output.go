package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/bochengwang975-blip/campus/core/course"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	conflictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
)

// printAs writes v as JSON or YAML; renderTable is used for the table format.
func printAs(w io.Writer, format string, v interface{}, renderTable func() string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		data, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case formatTable:
		_, err := fmt.Fprintln(w, renderTable())
		return err
	default:
		return fmt.Errorf("unsupported output %q (expected table|json|yaml)", format)
	}
}

// toYAML goes through JSON so that field names and their order follow the json tags.
func toYAML(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err = yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	resetStyle(&node)
	return yaml.Marshal(&node)
}

// resetStyle drops the flow & quoting styles inherited from JSON.
func resetStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		resetStyle(child)
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderWeek(week course.Week) string {
	headers := []string{""}
	for d := 1; d <= course.DaysPerWeek; d++ {
		headers = append(headers, course.DayNames[d])
	}
	t := newTable(headers...)
	for p := 0; p < course.PeriodsPerDay; p++ {
		row := []string{course.PeriodNames[p+1]}
		for d := 0; d < course.DaysPerWeek; d++ {
			row = append(row, renderCell(week.Grid[d][p]))
		}
		t.Row(row...)
	}

	var sb strings.Builder
	sb.WriteString(t.String())
	if len(week.Unplaced) > 0 {
		codes := make([]string, 0, len(week.Unplaced))
		for _, c := range week.Unplaced {
			codes = append(codes, c.Code)
		}
		sb.WriteString("\n")
		sb.WriteString(faintStyle.Render("未排课：" + strings.Join(codes, ", ")))
	}
	return sb.String()
}

func renderCell(cell course.Cell) string {
	lines := make([]string, 0, 2*len(cell))
	for _, e := range cell {
		lines = append(lines, e.Course.Code+" "+e.Course.Name, course.FormatLocation(e.Location)+" · "+e.TeacherNames)
	}
	s := strings.Join(lines, "\n")
	if len(cell) > 1 {
		return conflictStyle.Render(s)
	}
	return s
}

func renderReport(report course.ConflictReport) string {
	var sb strings.Builder
	if !report.HasConflict {
		sb.WriteString("无冲突")
	} else {
		t := newTable("类型", "课程", "时间 / 地点", "说明")
		for _, c := range report.Conflicts {
			p := course.Resolve(c.Course)
			var slot *course.TimeSlot
			if p.Placed {
				slot = &p.Slot
			}
			t.Row(
				string(c.Type),
				c.Course.Code+" "+c.Course.Name,
				course.FormatTime(slot)+" / "+course.FormatLocation(p.Location),
				conflictStyle.Render(c.Message),
			)
		}
		sb.WriteString(t.String())
	}
	for _, hint := range report.Hints {
		sb.WriteString("\n")
		sb.WriteString(faintStyle.Render("提示：" + hint))
	}
	return sb.String()
}
