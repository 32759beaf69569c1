package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"backend-tripline/internal/catalog"

	"github.com/spf13/cobra"
)

var edgeColumns = []string{"origin_id", "destination_id", "mode", "cost", "distance"}

var errMissingColumn = errors.New("csv header is missing a column")

// EdgeCreator is the part of the catalog the importer writes through.
type EdgeCreator interface {
	CreateEdge(ctx context.Context, edge catalog.Edge) (catalog.Edge, error)
}

type ImportResult struct {
	Created    int
	Duplicates int
}

var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "Route catalog tasks",
}

var edgesImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Load route edges from a CSV file",
	Long: `Load route edges from a CSV file with the header

  origin_id,destination_id,mode,cost,distance

Columns may appear in any order. Edges already in the catalog are
skipped and counted. Any other bad row stops the import; rows before
it stay loaded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		q, closeFn, err := openPostgres(loadConfig())
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer closeFn()

		ctx, cancel := withTimeout(cmd)
		defer cancel()
		res, err := ImportEdges(ctx, f, catalog.NewService(q, nil))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %d edges, skipped %d duplicates\n", res.Created, res.Duplicates)
		return nil
	},
}

func init() {
	edgesCmd.AddCommand(edgesImportCmd)
}

// ImportEdges reads edge rows from r and creates each one.
func ImportEdges(ctx context.Context, r io.Reader, edges EdgeCreator) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}

		edge, err := parseEdge(record, cols)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := edges.CreateEdge(ctx, edge); err != nil {
			if errors.Is(err, catalog.ErrDuplicateEdge) {
				res.Duplicates++
				slog.Debug("edge already in catalog",
					slog.String("origin_id", edge.OriginID),
					slog.String("destination_id", edge.DestinationID),
					slog.String("mode", string(edge.Mode)),
				)
				continue
			}
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		res.Created++
	}
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range edgeColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", errMissingColumn, col)
		}
	}
	return idx, nil
}

func parseEdge(record []string, cols map[string]int) (catalog.Edge, error) {
	field := func(name string) string { return strings.TrimSpace(record[cols[name]]) }

	mode, err := catalog.ParseMode(field("mode"))
	if err != nil {
		return catalog.Edge{}, err
	}
	cost, err := strconv.ParseInt(field("cost"), 10, 64)
	if err != nil {
		return catalog.Edge{}, fmt.Errorf("cost: %w", err)
	}
	distance, err := strconv.ParseInt(field("distance"), 10, 64)
	if err != nil {
		return catalog.Edge{}, fmt.Errorf("distance: %w", err)
	}
	return catalog.Edge{
		OriginID:      field("origin_id"),
		DestinationID: field("destination_id"),
		Mode:          mode,
		Cost:          cost,
		Distance:      distance,
	}, nil
}
