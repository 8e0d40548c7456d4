package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okian/valuator/internal/adapters/repository"
	service "github.com/okian/valuator/internal/app"
	"github.com/okian/valuator/internal/domain/model"
	"github.com/okian/valuator/pkg/logger"
)

func newImportCommand() *cobra.Command {
	var dbPath, catalogID, input string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load catalog tracks into a sqlite database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tracks, err := readTracks(cmd, input)
			if err != nil {
				return err
			}

			store, err := repository.OpenSQLStore(dbPath, repository.WithLogger(logger.Get()))
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc := service.New(service.WithLogger(logger.Get()), service.WithStore(store), service.WithMaxTracks(0))
			if err := svc.ImportTracks(cmd.Context(), catalogID, tracks); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %s tracks into catalog %s\n",
				humanize.Comma(int64(len(tracks))), catalogID)
			return err
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite catalog database")
	cmd.Flags().StringVar(&catalogID, "catalog", "", "Catalog id")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Tracks file (array or {\"tracks\": [...]}), or - for stdin")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// readTracks accepts either a bare JSON array of tracks or an object with a
// "tracks" array.
func readTracks(cmd *cobra.Command, path string) ([]model.Track, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var tracks []model.Track
		if err := json.Unmarshal(raw, &tracks); err != nil {
			return nil, fmt.Errorf("decode tracks: %w", err)
		}
		return tracks, nil
	}
	var wrapped struct {
		Tracks []model.Track `json:"tracks"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode tracks: %w", err)
	}
	return wrapped.Tracks, nil
}
