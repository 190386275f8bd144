package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/carverlab/facet/pkg/feature"
	"github.com/carverlab/facet/pkg/model"
	"github.com/carverlab/facet/pkg/pmi"
)

// recipe is a batch modeling script: features applied in order, optional
// annotations, optional export of a named body.
type recipe struct {
	Session  string           `yaml:"session"`
	Features []map[string]any `yaml:"features"`
	PMI      map[string]any   `yaml:"pmi"`
	Export   *struct {
		Result string `yaml:"result"`
		Schema string `yaml:"schema"`
		Output string `yaml:"output"`
	} `yaml:"export"`
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <recipe.yaml>",
	Short: "Apply a recipe of features and optionally export the result",
	Long:  `Runs a batch modeling recipe: applies its features in order, resolves any annotations, and writes the exported STEP file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read recipe: %w", err)
		}
		var rec recipe
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("parse recipe %s: %w", args[0], err)
		}
		if len(rec.Features) == 0 {
			return fmt.Errorf("recipe %s has no features", args[0])
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		engine, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		sessionID := rec.Session
		upstream := model.NewResult()

		for i, raw := range rec.Features {
			f, err := feature.Parse(raw)
			if err != nil {
				return fmt.Errorf("feature %d: %w", i, err)
			}
			id, built, err := engine.ApplyFeature(ctx, sessionID, upstream, f)
			if err != nil {
				return fmt.Errorf("feature %q: %w", f.ID, err)
			}
			sessionID = id
			upstream = model.Merge(upstream, built)
			fmt.Printf("applied %s (%d selections)\n", f.ID, len(built.Selections))
		}

		if rec.Export == nil {
			fmt.Printf("session %s ready, nothing to export\n", sessionID)
			return nil
		}

		resultKey := rec.Export.Result
		if resultKey == "" {
			resultKey = feature.DefaultResultKey
		}
		out, ok := upstream.Outputs[resultKey]
		if !ok {
			return fmt.Errorf("recipe produced no output named %q", resultKey)
		}
		handle := out.Meta.String(model.KeyHandle)

		var step []byte
		if rec.PMI != nil {
			payload, err := pmi.ParsePayload(rec.PMI)
			if err != nil {
				return err
			}
			step, err = engine.ExportSTEPWithPMI(ctx, sessionID, handle, rec.Export.Schema, payload)
			if err != nil {
				return err
			}
		} else {
			step, err = engine.ExportSTEP(ctx, sessionID, handle, rec.Export.Schema)
			if err != nil {
				return err
			}
		}

		output := rec.Export.Output
		if output == "" || output == "-" {
			_, err = os.Stdout.Write(step)
			return err
		}
		if err := os.WriteFile(output, step, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		fmt.Printf("exported %s (%d bytes)\n", output, len(step))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
