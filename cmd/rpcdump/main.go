// rpcdump reads a MessagePack-compatible byte file and pretty-prints the
// decoded Variant tree, colored by kind — a debug aid over the
// codec/variant surface, not a core module.
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"krypt.co/rpc/codec"
	_ "krypt.co/rpc/codec/msgpack"
	"krypt.co/rpc/rpclog"
	"krypt.co/rpc/rpctype"
	"krypt.co/rpc/variant"

	"github.com/op/go-logging"
)

func dumpCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: rpcdump dump <file>")
	}
	data, err := ioutil.ReadFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	codecName := c.String("codec")
	cdc, err := codec.Global.Lookup(codecName)
	if err != nil {
		return err
	}
	v, err := cdc.Parse(data)
	if err != nil {
		return err
	}
	fmt.Println(render(v, 0))
	return nil
}

func render(v *variant.Variant, depth int) string {
	indent := strings.Repeat("  ", depth)
	switch v.Kind() {
	case rpctype.Void:
		return black("void")
	case rpctype.Bool:
		b, _ := v.Bool()
		return magenta(strconv.FormatBool(b))
	case rpctype.String:
		s, _ := v.Str()
		return green(strconv.Quote(s))
	case rpctype.Array:
		arr, _ := v.Array()
		var b strings.Builder
		b.WriteString("[\n")
		for _, c := range arr {
			b.WriteString(indent + "  " + render(c, depth+1) + "\n")
		}
		b.WriteString(indent + "]")
		return b.String()
	case rpctype.Object:
		obj, _ := v.Object()
		var b strings.Builder
		b.WriteString(cyan("<") + "\n")
		for name, c := range obj {
			b.WriteString(indent + "  " + yellow(name) + ": " + render(c, depth+1) + "\n")
		}
		b.WriteString(indent + cyan(">"))
		return b.String()
	case rpctype.Map:
		pairs, _ := v.MapPairs()
		var b strings.Builder
		b.WriteString("{\n")
		for _, p := range pairs {
			b.WriteString(indent + "  " + render(p.Key, depth+1) + ": " + render(p.Value, depth+1) + "\n")
		}
		b.WriteString(indent + "}")
		return b.String()
	default:
		// Every numeric kind falls here; the debug text form already
		// carries the kind name (e.g. "int32(5)").
		return blue(v.String())
	}
}

func main() {
	rpclog.Setup("rpcdump", logging.NOTICE)

	app := cli.NewApp()
	app.Name = "rpcdump"
	app.Usage = "decode and pretty-print a codec-encoded byte file"
	app.Commands = []cli.Command{
		{
			Name:   "dump",
			Usage:  "dump <file>",
			Action: dumpCommand,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "codec", Value: "msgpack", Usage: "registered codec name"},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}
