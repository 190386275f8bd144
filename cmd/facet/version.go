package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carverlab/facet"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of facet",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("facet version %s\n", strings.TrimSpace(facet.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
