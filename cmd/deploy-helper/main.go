package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flawiddsouza/deploy-helper/pkg/console"
	"github.com/flawiddsouza/deploy-helper/pkg/engine"
	"github.com/flawiddsouza/deploy-helper/pkg/render"
	"github.com/flawiddsouza/deploy-helper/pkg/schema"
	"github.com/flawiddsouza/deploy-helper/pkg/vars"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	extraVars     string
	inventoryFile string
)

var rootCmd = &cobra.Command{
	Use:     "deploy-helper <deploy-file>",
	Short:   "Deployment helper tool",
	Long:    "deploy-helper runs the ordered task lists of a deployment YAML file against local or remote hosts.",
	Args:    cobra.ExactArgs(1),
	Version: version,
	RunE:    run,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVarP(&extraVars, "extra-vars", "e", "",
		"Set additional variables as key=value, JSON, or @file")
	rootCmd.Flags().StringVarP(&inventoryFile, "inventory", "i", "servers.yml",
		"The server configuration YAML file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		console.New().Errorf("%v", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	deployFile := args[0]

	inventory, err := schema.LoadInventory(inventoryFile)
	if err != nil {
		return err
	}
	deployments, err := schema.LoadDeployments(deployFile)
	if err != nil {
		return err
	}

	vctx := vars.NewContext()
	if err := vars.ParseExtra(extraVars, vctx); err != nil {
		return err
	}

	log := console.New()
	driver := engine.NewDriver(inventory, render.New(), log, filepath.Dir(deployFile))
	return driver.Run(cmd.Context(), deployments, vctx)
}
