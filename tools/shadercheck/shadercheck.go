package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/mogaika/graphicslab/shaders"
)

func checkFiles(vertPath, fragPath string) error {
	vert, err := ioutil.ReadFile(vertPath)
	if err != nil {
		return errors.Wrapf(err, "Failed to read vertex shader")
	}
	frag, err := ioutil.ReadFile(fragPath)
	if err != nil {
		return errors.Wrapf(err, "Failed to read fragment shader")
	}
	return shaders.Check(string(vert), string(frag))
}

func report(w io.Writer, name string, err error) bool {
	if err == nil {
		fmt.Fprintf(w, "%-16s ok\n", name)
		return true
	}
	var cerr *shaders.CheckError
	if errors.As(err, &cerr) {
		fmt.Fprintf(w, "%-16s %d problem(s)\n", name, len(cerr.Problems))
		for _, p := range cerr.Problems {
			fmt.Fprintf(w, "    %s\n", p)
		}
	} else {
		fmt.Fprintf(w, "%-16s %v\n", name, err)
	}
	return false
}

// run checks the built-in variants (or the named ones) when no files are given,
// otherwise the vertex/fragment file pair. Returns the process exit code.
func run(args []string, w io.Writer) int {
	fs := flag.NewFlagSet("shadercheck", flag.ContinueOnError)
	fs.SetOutput(w)
	var vertPath, fragPath string
	fs.StringVar(&vertPath, "vert", "", "Vertex shader file")
	fs.StringVar(&fragPath, "frag", "", "Fragment shader file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if vertPath != "" || fragPath != "" {
		if vertPath == "" || fragPath == "" {
			fmt.Fprintln(w, "both -vert and -frag are required")
			return 2
		}
		if !report(w, vertPath, checkFiles(vertPath, fragPath)) {
			return 1
		}
		return 0
	}

	variants := shaders.Builtin()
	if fs.NArg() != 0 {
		variants = variants[:0:0]
		for _, name := range fs.Args() {
			v, err := shaders.Parse(name)
			if err != nil {
				fmt.Fprintln(w, err)
				return 2
			}
			variants = append(variants, v)
		}
	}

	code := 0
	for _, v := range variants {
		if !report(w, v.String(), shaders.CheckVariant(v)) {
			code = 1
		}
	}
	return code
}

func main() {
	log.SetFlags(0)
	os.Exit(run(os.Args[1:], os.Stdout))
}
