// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/tliron/commonlog"

	"mcrl2/internal/aterm"
	"mcrl2/internal/linear"
	"mcrl2/internal/rewrite"
)

var version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		output       string
		linMethod    string
		finalCluster bool
		noCluster    bool
		newState     bool
		binary       bool
		noSumElm     bool
		stateNames   bool
		noRewrite    bool
		noFreeVars   bool
		noDeltaElim  bool
		rewriter     string
		textInput    bool
		textOutput   bool
		verbose      bool
		showVersion  bool
	)

	pflag.StringVarP(&output, "output", "o", "", "write the LPE to this file (default: stdout)")
	pflag.StringVarP(&linMethod, "lin-method", "l", "regular", "linearisation method: stack, regular or regular2")
	pflag.BoolVarP(&finalCluster, "cluster", "c", false, "cluster the final result")
	pflag.BoolVarP(&noCluster, "no-cluster", "n", false, "skip intermediate clustering")
	pflag.BoolVar(&newState, "newstate", true, "use an enumerated state encoding (off: Pos)")
	pflag.BoolVarP(&binary, "binary", "b", false, "encode the state in boolean parameters")
	pflag.BoolVar(&noSumElm, "no-sumelm", false, "disable sum elimination")
	pflag.BoolVarP(&stateNames, "statenames", "a", false, "derive state names from process names")
	pflag.BoolVar(&noRewrite, "no-rewrite", false, "do not rewrite data terms while linearising")
	pflag.StringVarP(&rewriter, "rewriter", "R", "innerc", "rewrite strategy: inner or innerc")
	pflag.BoolVarP(&noFreeVars, "no-freevars", "f", false, "instantiate free variables with dummy constants")
	pflag.BoolVarP(&noDeltaElim, "no-deltaelm", "D", false, "disable delta-summand elimination")
	pflag.BoolVar(&textInput, "text-in", false, "read the input as a textual term")
	pflag.BoolVar(&textOutput, "text-out", false, "write the output as a textual term")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "print progress and statistics")
	pflag.BoolVar(&showVersion, "version", false, "print the version and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("mcrl22lpe %s\n", version)
		return 0
	}
	if verbose {
		commonlog.Configure(1, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: mcrl22lpe [options] <input.spec>")
		pflag.PrintDefaults()
		return 1
	}
	input := pflag.Arg(0)

	method, err := linear.ParseLinMethod(linMethod)
	if err != nil {
		color.Red("❌ %s", err)
		return 1
	}
	strategy, err := rewrite.ParseStrategy(rewriter)
	if err != nil {
		color.Red("❌ %s", err)
		return 1
	}
	cfg := linear.Config{
		Method:                method,
		Rewriter:              strategy,
		FinalCluster:          finalCluster,
		NoIntermediateCluster: noCluster,
		NewState:              newState && method != linear.MethodStack,
		Binary:                binary,
		NoSumElm:              noSumElm,
		StateNames:            stateNames,
		NoRewrite:             noRewrite,
		NoFreeVars:            noFreeVars,
		NoDeltaElimination:    noDeltaElim,
	}

	store := aterm.NewStore()
	specTerm, err := readSpec(store, input, textInput)
	if err != nil {
		color.Red("❌ cannot read %s: %s", input, err)
		return 1
	}
	if store.IsInvalid(specTerm) {
		color.Red("❌ %s does not contain a valid term", input)
		return 1
	}

	ctx, err := linear.NewContext(store, cfg)
	if err != nil {
		color.Red("❌ %s", err)
		return 1
	}
	result, err := linear.Linearise(ctx, specTerm)
	if err != nil {
		ctx.Report.Render(os.Stderr)
		return 1
	}
	ctx.Report.Render(os.Stderr)

	if err := writeResult(result, output, textOutput); err != nil {
		color.Red("❌ cannot write result: %s", err)
		return 1
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "interned %s symbols, %s term nodes\n",
			humanize.Comma(int64(store.SymbolCount())),
			humanize.Comma(int64(store.NodeCount())))
		color.Green("✅ linearised %s", input)
	}
	return 0
}

func readSpec(store *aterm.Store, path string, text bool) (*aterm.Term, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if text {
		return store.ReadText(f)
	}
	t, _, err := store.ReadBinary(f)
	return t, err
}

func writeResult(t *aterm.Term, output string, text bool) error {
	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if text {
		return aterm.WriteText(w, t)
	}
	return aterm.WriteBinary(w, t, aterm.TypeInfo{
		Creator:     "mcrl22lpe " + version,
		Descriptors: [4]string{aterm.DescriptorMCRL2, "", "", ""},
	})
}
