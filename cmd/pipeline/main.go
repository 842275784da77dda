// pipeline 是离线维护命令：重新打标、写入标签目录、导入层级和问题映射、创建修正人账号。
package main

import (
	"context"
	"os"

	"survey_insight_go/internal/app"
	"survey_insight_go/internal/config"
	"survey_insight_go/pkg/log"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	app        *app.App
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "pipeline",
		Short:         "Survey tagging maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
				return nil
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.app != nil {
				opts.app.Close()
			}
			log.Sync()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "configs/config.yaml", "path to config file")

	cmd.AddCommand(
		newRetagCmd(opts),
		newSeedTagsCmd(opts),
		newImportHierarchyCmd(opts),
		newImportMappingsCmd(opts),
		newCuratorCmd(opts),
	)
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Errorf("pipeline: %v", err)
		log.Sync()
		os.Exit(1)
	}
}
