package internal

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "plutobuild",
	Short: "plutobuild compiles the vendored Pluto sources into static libraries",
	Long: `plutobuild compiles the vendored Pluto interpreter and its Soup support
library into static archives and prints the link directives a host build
needs to consume them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
