// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command irdump traces the example kernels and prints their IR.
//
// Usage:
//
//	irdump [-kernels=areas,axpy] [-program] [-number] [-summary|-yaml] [-v] [-o file]
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"
	texttemplate "text/template"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"github.com/gx-org/kernelir/api/options"
	"github.com/gx-org/kernelir/api/values"
	gxfmt "github.com/gx-org/kernelir/base/fmt"
	"github.com/gx-org/kernelir/base/tmpl"
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/build/ir/irstring"
	"github.com/gx-org/kernelir/examples/dyncallable"
	"github.com/gx-org/kernelir/examples/polymorphism"
	"github.com/gx-org/kernelir/golang/backend"
	"github.com/gx-org/kernelir/golang/template"
	"github.com/gx-org/kernelir/tools/irflag"
)

type traceFunc func(*builder.Context, *backend.Backend) (*ir.Func, error)

var kernels = map[string]traceFunc{
	"areas": func(bctx *builder.Context, bck *backend.Backend) (*ir.Func, error) {
		k, err := polymorphism.Build(bctx, bck, polymorphism.Scene{
			Circles: []polymorphism.Circle{{Radius: 1}},
			Squares: []polymorphism.Square{{Side: 1}},
		})
		if err != nil {
			return nil, err
		}
		return k.Func, nil
	},
	"axpy": func(bctx *builder.Context, bck *backend.Backend) (*ir.Func, error) {
		k, err := dyncallable.Scalars(bctx, bck, dyncallable.Axpy(), 2, []float32{1}, []float32{1})
		if err != nil {
			return nil, err
		}
		return k.Func, nil
	},
	"axpy_vec": func(bctx *builder.Context, bck *backend.Backend) (*ir.Func, error) {
		k, err := dyncallable.Vectors(bctx, bck, dyncallable.Axpy(), 2, []values.Vec3[float32]{{}}, []values.Vec3[float32]{{}})
		if err != nil {
			return nil, err
		}
		return k.Func, nil
	},
}

const fileTmpl = `// Code generated by irdump. DO NOT EDIT.

{{.}}`

var summaryTmpl = texttemplate.Must(texttemplate.New("summary").Parse(
	"{{.Kind}} {{.Name}}: {{.NumNodes}} nodes, {{len .Buffers}} buffers\n",
))

type (
	bufferSummary struct {
		Elem string `yaml:"elem"`
		Len  int    `yaml:"len"`
	}

	funcSummary struct {
		Name    string          `yaml:"name"`
		Kind    string          `yaml:"kind"`
		Params  []string        `yaml:"params,omitempty"`
		Result  string          `yaml:"result,omitempty"`
		Nodes   int             `yaml:"nodes"`
		Buffers []bufferSummary `yaml:"buffers,omitempty"`
		Ops     map[string]int  `yaml:"ops"`
		Calls   []string        `yaml:"calls,omitempty"`
	}
)

func summarize(fn *ir.Func) funcSummary {
	sum := funcSummary{
		Name:  fn.Name(),
		Kind:  fn.Kind().String(),
		Nodes: fn.NumNodes(),
		Ops:   make(map[string]int),
	}
	for _, typ := range fn.ParamTypes() {
		sum.Params = append(sum.Params, typ.String())
	}
	if res := fn.Result(); res != nil && !res.IsVoid() {
		sum.Result = res.String()
	}
	for _, buf := range fn.Buffers() {
		sum.Buffers = append(sum.Buffers, bufferSummary{Elem: buf.ElemType().String(), Len: buf.Len()})
	}
	for node := range fn.Nodes() {
		sum.Ops[node.Op().String()]++
		if node.Op() == ir.OpCall {
			sum.Calls = append(sum.Calls, node.Aux().(*ir.Func).Name())
		}
	}
	return sum
}

func yamlString(fns []*ir.Func) (string, error) {
	sums := make([]funcSummary, len(fns))
	for i, fn := range fns {
		sums[i] = summarize(fn)
	}
	out, err := yaml.Marshal(sums)
	if err != nil {
		return "", errors.Wrap(err, "cannot marshal function summaries")
	}
	return string(out), nil
}

type config struct {
	kernels *[]string
	program bool
	number  bool
	summary bool
	yaml    bool
	verbose bool
	output  string
}

func parse(args []string) (*config, error) {
	fs := flag.NewFlagSet("irdump", flag.ContinueOnError)
	cfg := &config{
		kernels: irflag.StringList(fs, "kernels", "comma-separated list of kernels to dump (default: all)"),
	}
	fs.BoolVar(&cfg.program, "program", false, "also dump the callables called by the kernels")
	fs.BoolVar(&cfg.number, "number", false, "number the lines of the output")
	fs.BoolVar(&cfg.summary, "summary", false, "print one line per function instead of the IR")
	fs.BoolVar(&cfg.yaml, "yaml", false, "print a YAML description of the functions instead of the IR")
	fs.BoolVar(&cfg.verbose, "v", false, "log tracing events on the standard error")
	fs.StringVar(&cfg.output, "o", "", "write the output into a file instead of the standard output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if len(*cfg.kernels) == 0 {
		names := make([]string, 0, len(kernels))
		for name := range kernels {
			names = append(names, name)
		}
		sort.Strings(names)
		*cfg.kernels = names
	}
	return cfg, nil
}

func dump(w io.Writer, cfg *config) error {
	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	bctx, err := builder.NewContext(options.Registry{Registry: ir.NewRegistry()}, options.Logger{Logger: logger})
	if err != nil {
		return err
	}
	bck := backend.New(options.Logger{Logger: logger})
	for i, name := range *cfg.kernels {
		trace, ok := kernels[name]
		if !ok {
			return errors.Errorf("unknown kernel %q", name)
		}
		fn, err := trace(bctx, bck)
		if err != nil {
			return errors.WithMessagef(err, "cannot trace kernel %s", name)
		}
		fns := []*ir.Func{fn}
		if cfg.program {
			fns = slices.Concat(fns, irstring.Callees(fn))
		}
		var out string
		switch {
		case cfg.yaml:
			out, err = yamlString(fns)
			if i > 0 {
				out = "---\n" + out
			}
		case cfg.summary:
			out, err = tmpl.IterateTmpl(fns, summaryTmpl)
		default:
			out, err = tmpl.IterateFunc(fns, func(_ int, f *ir.Func) (string, error) {
				return irstring.Func(f), nil
			})
		}
		if err != nil {
			return err
		}
		if cfg.number {
			out = gxfmt.Number(out)
		}
		if i > 0 && !cfg.summary && !cfg.yaml {
			out = "\n" + out
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}

func write(cfg *config) error {
	if cfg.output == "" {
		return dump(os.Stdout, cfg)
	}
	var out strings.Builder
	if err := dump(&out, cfg); err != nil {
		return err
	}
	return template.Exec(fileTmpl, cfg.output, out.String())
}

func main() {
	cfg, err := parse(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := write(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
