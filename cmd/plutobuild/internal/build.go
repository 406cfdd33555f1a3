package internal

import (
	"fmt"
	"os"
	"strings"

	xlog "github.com/qiniu/x/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	plutobuild "github.com/plutolang/pluto-build"
)

type buildOptions struct {
	out          string
	target       string
	host         string
	source       string
	maxStackSize int
	useLongjmp   bool
	debug        bool
	profile      string
	ldflags      bool
	verbose      bool
}

func newBuildCmd() (*cobra.Command, *buildOptions) {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the Pluto and Soup static libraries",
		Long: `Build compiles the Soup support library and then the Pluto library into
the output directory and prints link directives on stdout, one per line.
Defaults come from the OUT_DIR, TARGET, HOST and PLUTO_SOURCE_DIR
environment variables; a YAML profile overrides them and explicit flags
override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.out, "out", "", "Output directory (recreated from scratch)")
	flags.StringVar(&opts.target, "target", "", "Target triple")
	flags.StringVar(&opts.host, "host", "", "Host triple")
	flags.StringVar(&opts.source, "source", "", "Root of the vendored Pluto source tree")
	flags.IntVar(&opts.maxStackSize, "max-stack-size", 0, "Upper bound on the interpreter stack")
	flags.BoolVar(&opts.useLongjmp, "use-longjmp", false, "Use longjmp instead of C++ exceptions")
	flags.BoolVar(&opts.debug, "debug", false, "Debug build (interpreter API checks, no optimization)")
	flags.StringVar(&opts.profile, "profile", "", "YAML build profile")
	flags.BoolVar(&opts.ldflags, "ldflags", false, "Print linker flags instead of link directives")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose build output")
	return cmd, opts
}

func init() {
	cmd, _ := newBuildCmd()
	rootCmd.AddCommand(cmd)
}

// configure layers the profile and the explicitly set flags onto b, in
// that order: environment defaults < profile < flags.
func (o *buildOptions) configure(b *plutobuild.Build, flags *pflag.FlagSet) error {
	if o.profile != "" {
		p, err := LoadProfile(o.profile)
		if err != nil {
			return err
		}
		p.Apply(b)
		xlog.Debugf("applied build profile %s", o.profile)
	}

	if flags.Changed("out") {
		b.OutDir(o.out)
	}
	if flags.Changed("target") {
		b.Target(o.target)
	}
	if flags.Changed("host") {
		b.Host(o.host)
	}
	if flags.Changed("source") {
		b.Source(o.source)
	}
	if flags.Changed("max-stack-size") {
		b.SetMaxStackSize(o.maxStackSize)
	}
	if flags.Changed("use-longjmp") {
		b.UseLongjmp(o.useLongjmp)
	}
	if flags.Changed("debug") {
		b.Debug(o.debug)
	}
	return nil
}

func (o *buildOptions) run(cmd *cobra.Command) error {
	if o.verbose {
		xlog.SetOutputLevel(xlog.Ldebug)
	}

	b := plutobuild.New()
	if err := o.configure(b, cmd.Flags()); err != nil {
		return err
	}

	// Surface missing configuration as a usage error instead of the
	// library's abort.
	if missing := missingConfig(b); len(missing) > 0 {
		return fmt.Errorf("missing %s (set the environment variable, a profile or a flag)",
			strings.Join(missing, ", "))
	}

	artifacts := b.Build()
	xlog.Debugf("built %s into %s", strings.Join(artifacts.Libs(), ", "), artifacts.LibDir())

	if o.ldflags {
		fmt.Println(strings.Join(artifacts.LdFlags(), " "))
		return nil
	}
	artifacts.PrintLinkMetadata(os.Stdout)
	return nil
}

func missingConfig(b *plutobuild.Build) []string {
	var missing []string
	if b.TargetTriple() == "" {
		missing = append(missing, "TARGET")
	}
	if b.HostTriple() == "" {
		missing = append(missing, "HOST")
	}
	if b.OutputDir() == "" {
		missing = append(missing, "OUT_DIR")
	}
	return missing
}
