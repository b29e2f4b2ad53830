package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

// outputFormat selects how a command prints snapshots.
type outputFormat struct {
	json bool
	yaml bool
}

func (f *outputFormat) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.json, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&f.yaml, "yaml", false, "output as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

// write prints v, a types.Snapshot or a slice of them.
func (f *outputFormat) write(w io.Writer, v any) error {
	switch {
	case f.json:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return sysError(fmt.Errorf("marshal JSON: %w", err))
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case f.yaml:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return sysError(fmt.Errorf("marshal YAML: %w", err))
		}
		return enc.Close()
	}

	switch v := v.(type) {
	case types.Snapshot:
		writeSnapshot(w, v, 0)
	case []types.Snapshot:
		for _, s := range v {
			writeSnapshot(w, s, s.Height-v[0].Height)
		}
	default:
		return sysError(fmt.Errorf("cannot print %T", v))
	}
	return nil
}

// writeSnapshot prints one node indented by depth.
func writeSnapshot(w io.Writer, s types.Snapshot, depth int) {
	fmt.Fprintf(w, "%s%s (parent %s, height %d)\n",
		strings.Repeat("  ", depth), strconv.Quote(s.ID), s.ParentID, s.Height)
}

func quoteAll(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	return strings.Join(quoted, " ")
}
