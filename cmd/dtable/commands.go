package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"sort"
	"strings"
	"time"

	"github.com/Comcast/dtable/core"
	"github.com/Comcast/dtable/interpreters"
	"github.com/Comcast/dtable/tools"
	"github.com/Comcast/dtable/tools/expect"
	"github.com/Comcast/dtable/util"

	"github.com/jsccast/yaml"
)

// Command is a subcommand.
type Command struct {
	Name string
	Args string
	Doc  string
	Run  func(c *Context, args []string) error
}

// Context is what a Command gets to work with.
type Context struct {
	ctx    context.Context
	in     io.Reader
	out    io.Writer
	flags  *flag.FlagSet
	pretty *bool

	symbols *string
	lenient *bool
}

// Commands are the subcommands by name.
var Commands = map[string]*Command{
	"check": {
		Name: "check",
		Args: "FILE",
		Doc:  "Compile the table and report its size.",
		Run:  checkCmd,
	},
	"eval": {
		Name: "eval",
		Args: "FILE [JSON]",
		Doc:  "Evaluate the JSON message (or each line of stdin).",
		Run:  evalCmd,
	},
	"analyze": {
		Name: "analyze",
		Args: "FILE [OUTCOME ...]",
		Doc:  "Report coverage and outcomes as JSON.",
		Run:  analyzeCmd,
	},
	"fmt": {
		Name: "fmt",
		Args: "FILE",
		Doc:  "Write the table in canonical form.",
		Run:  fmtCmd,
	},
	"show": {
		Name: "show",
		Args: "FILE",
		Doc:  "Draw the table for a terminal.",
		Run:  showCmd,
	},
	"test": {
		Name: "test",
		Args: "FILE SESSION",
		Doc:  "Run the session's cases against the table.",
		Run:  testCmd,
	},
	"yamltojson": {
		Name: "yamltojson",
		Doc:  "Convert a table source on stdin to JSON.",
		Run:  yamlToJSONCmd,
	},
	"jsontoyaml": {
		Name: "jsontoyaml",
		Doc:  "Convert a JSON table source on stdin to YAML.",
		Run:  jsonToYAMLCmd,
	},
}

// Usage writes help for all subcommands.
func Usage(w io.Writer) {
	names := make([]string, 0, len(Commands))
	for name := range Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Subcommands:\n\n")
	for _, name := range names {
		c := Commands[name]
		fmt.Fprintf(w, "  %s %s\n    %s\n", c.Name, c.Args, c.Doc)
	}
	fmt.Fprintf(w, "\nFlags (before the arguments):\n\n")
	newContext(context.Background(), "", nil, w).flags.PrintDefaults()
}

func newContext(ctx context.Context, name string, in io.Reader, out io.Writer) *Context {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return &Context{
		ctx:     ctx,
		in:      in,
		out:     out,
		flags:   fs,
		pretty:  fs.Bool("p", false, "pretty-print JSON"),
		symbols: fs.String("symbols", "", "comma-separated symbols to add to the registry"),
		lenient: fs.Bool("lenient", false, "skip the exhaustiveness check"),
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		Usage(out)
		return errors.New("need a subcommand")
	}

	cmd, have := Commands[args[0]]
	if !have {
		Usage(out)
		return fmt.Errorf(`unknown subcommand "%s"`, args[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c := newContext(ctx, cmd.Name, in, out)
	verbose := c.flags.Bool("v", false, "verbose logging")
	if err := c.flags.Parse(args[1:]); err != nil {
		return err
	}
	util.Logging = *verbose

	return cmd.Run(c, c.flags.Args())
}

// load reads and compiles the table in the file.
func (c *Context) load(filename string) (*core.Decider, error) {
	s, err := tools.ReadTableSource(filename)
	if err != nil {
		return nil, err
	}
	if *c.symbols != "" {
		if s.Registry == nil {
			s.Registry = core.NewRegistry()
		}
		for _, sym := range strings.Split(*c.symbols, ",") {
			s.Registry.Add(strings.TrimSpace(sym))
		}
	}
	if *c.lenient {
		s.SkipValidation = true
	}
	// The command reports errors itself.
	s.Raising = false

	util.Logf("compiling %s (%s mode)", s.Name, or(s.Mode, "boolean"))
	return s.Compile(c.ctx, interpreters.Standard())
}

func (c *Context) writeJSON(x interface{}) error {
	var (
		bs  []byte
		err error
	)
	if *c.pretty {
		bs, err = json.MarshalIndent(x, "", "  ")
	} else {
		bs, err = json.Marshal(x)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "%s\n", bs)
	return err
}

func need(args []string, min, max int) error {
	if len(args) < min || max < len(args) {
		return fmt.Errorf("wrong number of arguments: %d", len(args))
	}
	return nil
}

func checkCmd(c *Context, args []string) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	d, err := c.load(args[0])
	if err != nil {
		return err
	}
	t := d.Table
	_, err = fmt.Fprintf(c.out, "%s: %d columns, %d of %d rows (%s)\n",
		d.Source.Name, len(t.Columns()), t.Len(), t.Size(), t.Mode())
	return err
}

// Result is what eval writes for each message.
type Result struct {
	Outcome string `json:"outcome,omitempty"`
	Key     uint64 `json:"key"`
	Error   string `json:"error,omitempty"`
}

func evalCmd(c *Context, args []string) error {
	if err := need(args, 1, 2); err != nil {
		return err
	}
	d, err := c.load(args[0])
	if err != nil {
		return err
	}

	eval := func(js []byte) error {
		var msg core.Bindings
		if err := json.Unmarshal(js, &msg); err != nil {
			return err
		}
		var r Result
		bs, err := d.Bindings(c.ctx, msg)
		if err == nil {
			var (
				o core.Outcome
				k core.Key
			)
			o, k, err = d.Table.Outcome(bs)
			r.Key = uint64(k)
			if err == nil {
				err = o.Err()
				r.Outcome = string(o.Symbol)
			}
		}
		if err != nil {
			r.Error = err.Error()
		}
		return c.writeJSON(&r)
	}

	if len(args) == 2 {
		return eval([]byte(args[1]))
	}

	in := bufio.NewScanner(c.in)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if err := eval([]byte(line)); err != nil {
			return err
		}
	}
	return in.Err()
}

func analyzeCmd(c *Context, args []string) error {
	if err := need(args, 1, 1<<16); err != nil {
		return err
	}
	d, err := c.load(args[0])
	if err != nil {
		return err
	}
	return c.writeJSON(tools.Analyze(d.Table, args[1:]...))
}

func fmtCmd(c *Context, args []string) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	d, err := c.load(args[0])
	if err != nil {
		return err
	}
	return tools.RenderMarkdown(d.Table, c.out)
}

func showCmd(c *Context, args []string) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	d, err := c.load(args[0])
	if err != nil {
		return err
	}
	return tools.RenderPretty(d.Table, c.out)
}

func testCmd(c *Context, args []string) error {
	if err := need(args, 2, 2); err != nil {
		return err
	}
	d, err := c.load(args[0])
	if err != nil {
		return err
	}
	bs, err := ioutil.ReadFile(args[1])
	if err != nil {
		return err
	}
	s, err := expect.ParseSession(bs)
	if err != nil {
		return err
	}
	s.Verbose = util.Logging

	r, err := s.Run(c.ctx, d)
	if err != nil {
		return err
	}
	if err = c.writeJSON(r); err != nil {
		return err
	}
	return r.Err()
}

func yamlToJSONCmd(c *Context, args []string) error {
	if err := need(args, 0, 0); err != nil {
		return err
	}
	bs, err := ioutil.ReadAll(c.in)
	if err != nil {
		return err
	}
	s, err := tools.ParseTableSource(bs)
	if err != nil {
		return err
	}
	return c.writeJSON(s)
}

func jsonToYAMLCmd(c *Context, args []string) error {
	if err := need(args, 0, 0); err != nil {
		return err
	}
	bs, err := ioutil.ReadAll(c.in)
	if err != nil {
		return err
	}
	var s core.TableSource
	if err = json.Unmarshal(bs, &s); err != nil {
		return err
	}
	if bs, err = yaml.Marshal(&s); err != nil {
		return err
	}
	_, err = c.out.Write(bs)
	return err
}

func or(s, otherwise string) string {
	if s == "" {
		return otherwise
	}
	return s
}
