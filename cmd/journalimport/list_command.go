package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"journalimport/internal/config"
	"journalimport/internal/discovery"
	"journalimport/internal/docwriter"
	"journalimport/internal/layout"
)

type volumeView struct {
	JournalID    string `json:"journal_id"`
	VolumeFolder string `json:"volume_folder"`
	ProcessTitle string `json:"process_title"`
	Images       int    `json:"images"`
	Imported     bool   `json:"imported"`
	Error        string `json:"error,omitempty"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list [journal-id...]",
		Short: "List journal volumes waiting below the base directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			views, err := collectVolumes(cfg, args)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintf(out, "No volumes found below %s\n", cfg.Paths.BaseDir)
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				images := strconv.Itoa(v.Images)
				if v.Error != "" {
					images = "error: " + v.Error
				}
				rows = append(rows, []string{v.JournalID, v.VolumeFolder, v.ProcessTitle, images, yesNo(v.Imported)})
			}
			fmt.Fprintln(out, renderTable(
				[]column{col("Journal"), col("Volume"), col("Process title"), num("Images"), col("Imported")},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func collectVolumes(cfg *config.Config, journalIDs []string) ([]volumeView, error) {
	if len(journalIDs) == 0 {
		ids, err := layout.ListJournalFolders(cfg.Paths.BaseDir)
		if err != nil {
			return nil, err
		}
		journalIDs = ids
	}

	var views []volumeView
	for _, raw := range journalIDs {
		journalID := strings.TrimSpace(raw)
		if journalID == "" {
			continue
		}
		volumes, err := layout.ListVolumeFolders(cfg.Paths.BaseDir, journalID)
		if err != nil {
			return nil, err
		}
		for _, volume := range volumes {
			title := layout.ProcessTitle(journalID, layout.VolumeYear(journalID, volume))
			view := volumeView{JournalID: journalID, VolumeFolder: volume, ProcessTitle: title}
			files, err := discovery.ListFiles(
				filepath.Join(cfg.Paths.BaseDir, journalID, volume),
				discovery.Options{Exclude: cfg.Import.Exclude},
			)
			if err != nil {
				view.Error = err.Error()
			}
			view.Images = len(files)
			if _, err := os.Stat(filepath.Join(cfg.Paths.ImportDir, title+docwriter.Extension)); err == nil {
				view.Imported = true
			} else if !errors.Is(err, os.ErrNotExist) {
				view.Error = err.Error()
			}
			views = append(views, view)
		}
	}
	return views, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
