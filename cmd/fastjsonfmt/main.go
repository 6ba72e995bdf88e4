// Command fastjsonfmt reads a JSON document from stdin (or a file named
// on the command line) and writes it back out re-serialized, as a smoke
// test of the parse/serialize round trip.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mcvoid/fastjson"
)

func main() {
	indent := flag.Int("indent", 2, "spaces per indent level; 0 for compact output")
	mode := flag.String("mode", "object", "serializer dialect: object, strict, null, compat, rails")
	validateOnly := flag.Bool("validate", false, "only check well-formedness, print nothing")
	flag.Parse()

	var r io.Reader = os.Stdin
	if path := flag.Arg(0); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("fastjsonfmt: %v", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		log.Fatalf("fastjsonfmt: reading input: %v", err)
	}

	opts := fastjson.DefaultOptions()

	if *validateOnly {
		if err := fastjson.Validate(data, opts); err != nil {
			log.Fatalf("fastjsonfmt: %v", err)
		}
		return
	}

	m, err := parseMode(*mode)
	if err != nil {
		log.Fatalf("fastjsonfmt: %v", err)
	}
	opts.Mode = m
	opts.Indent = *indent

	v, err := fastjson.Parse(data, opts)
	if err != nil {
		log.Fatalf("fastjsonfmt: %v", err)
	}
	out, err := fastjson.MarshalValue(v, opts)
	if err != nil {
		log.Fatalf("fastjsonfmt: %v", err)
	}
	fmt.Println(string(out))
}

func parseMode(s string) (fastjson.Mode, error) {
	switch s {
	case "object":
		return fastjson.ModeObject, nil
	case "strict":
		return fastjson.ModeStrict, nil
	case "null":
		return fastjson.ModeNull, nil
	case "compat":
		return fastjson.ModeCompat, nil
	case "rails":
		return fastjson.ModeRails, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}
