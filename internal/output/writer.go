package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/zx06/xcreds/internal/errors"
)

// TableFormatter 让数据自行提供表格形式（列名 + 行）。
// ok=false 时退回到通用的 key/value 渲染。
type TableFormatter interface {
	ToTableData() (columns []string, rows []map[string]any, ok bool)
}

type Writer struct {
	Out io.Writer
	Err io.Writer
}

func New(out, err io.Writer) Writer {
	return Writer{Out: out, Err: err}
}

func (w Writer) WriteOK(format Format, data any) error {
	return w.write(format, Success(data))
}

func (w Writer) WriteError(format Format, xe *errors.XError) error {
	return w.write(format, Failure(xe))
}

func (w Writer) write(format Format, env Envelope) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w.Out)
		enc.SetEscapeHTML(false)
		return enc.Encode(env)
	case FormatYAML:
		b, err := yaml.Marshal(env)
		if err != nil {
			return err
		}
		if _, err := w.Out.Write(b); err != nil {
			return err
		}
		if len(b) == 0 || b[len(b)-1] != '\n' {
			_, _ = w.Out.Write([]byte("\n"))
		}
		return nil
	case FormatTable:
		return writeTable(w.Out, env)
	case FormatCSV:
		return writeCSV(w.Out, env)
	default:
		return errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": string(format)})
	}
}

// tableData 把 Data 统一为列 + 行；非 TableFormatter 的数据渲染为 field/value 两列。
func tableData(data any) ([]string, []map[string]any) {
	if tf, ok := data.(TableFormatter); ok {
		if cols, rows, ok := tf.ToTableData(); ok {
			return cols, rows
		}
	}
	m := toMap(data)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, map[string]any{"field": k, "value": m[k]})
	}
	return []string{"field", "value"}, rows
}

// toMap 借助 json tag 把结构体展开为 map。
func toMap(data any) map[string]any {
	if data == nil {
		return nil
	}
	if m, ok := data.(map[string]any); ok {
		return m
	}
	b, err := json.Marshal(data)
	if err != nil {
		return map[string]any{"value": fmt.Sprintf("%v", data)}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{"value": string(b)}
	}
	return m
}

func formatCellValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<null>"
	case string:
		return x
	case []any, map[string]any:
		b, _ := json.Marshal(x)
		return string(b)
	case []string:
		return strings.Join(x, ",")
	default:
		return fmt.Sprintf("%v", x)
	}
}

func writeTable(out io.Writer, env Envelope) error {
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	if !env.OK {
		if env.Error != nil {
			_, _ = fmt.Fprintf(tw, "error.code\t%s\n", env.Error.Code)
			_, _ = fmt.Fprintf(tw, "error.message\t%s\n", env.Error.Message)
		}
		return tw.Flush()
	}
	if env.Data == nil {
		return tw.Flush()
	}

	cols, rows := tableData(env.Data)
	_, _ = fmt.Fprintln(tw, strings.Join(cols, "\t"))
	seps := make([]string, len(cols))
	for i, c := range cols {
		seps[i] = strings.Repeat("-", len(c))
	}
	_, _ = fmt.Fprintln(tw, strings.Join(seps, "\t"))
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = formatCellValue(row[c])
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if _, ok := env.Data.(TableFormatter); ok {
		_, _ = fmt.Fprintf(tw, "\n(%d rows)\n", len(rows))
	}
	return tw.Flush()
}

func writeCSV(out io.Writer, env Envelope) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()
	if !env.OK {
		_ = cw.Write([]string{"error.code", "error.message"})
		if env.Error != nil {
			_ = cw.Write([]string{string(env.Error.Code), env.Error.Message})
		}
		cw.Flush()
		return cw.Error()
	}
	if env.Data == nil {
		return nil
	}
	cols, rows := tableData(env.Data)
	_ = cw.Write(cols)
	for _, row := range rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			if row[c] != nil {
				rec[i] = formatCellValue(row[c])
			}
		}
		_ = cw.Write(rec)
	}
	cw.Flush()
	return cw.Error()
}
