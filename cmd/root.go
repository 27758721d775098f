package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pipet-dev/pipet/internal/compiler"
	"github.com/pipet-dev/pipet/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "pipet [flags] EXPRESSION",
	Short:         "Compile and run pipeline one-liners",
	Long:          `pipet compiles a fluent pipeline expression to a cached native binary and runs it against a stream.`,
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			fmt.Fprintln(os.Stderr, compileErr.Error())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().StringP("mode", "m", "stdin", "Input mode: stdin, literal or range")
	rootCmd.PersistentFlags().BoolP("source", "s", false, "Print the generated source without compiling")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("cache-dir", "", "Cache directory (default: platform cache dir)")
	rootCmd.PersistentFlags().String("toolchain", "", "Toolchain selection: auto, embedded or system")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Bypass cache lookup (still stores the result)")
	rootCmd.PersistentFlags().Bool("stats", false, "Print timing statistics after execution")
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(cacheCmd)

	viper.SetDefault("toolchain", "auto")
	viper.SetDefault("verbose", false)
}
