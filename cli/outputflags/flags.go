// Package outputflags selects the format and destination of described plans.
package outputflags

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Flags struct {
	Format     string
	jsonPretty bool
	outputFile string
	pretty     int
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&f.Format, "f", "yaml", "format for output plans [json,yaml]")
	fs.BoolVar(&f.jsonPretty, "J", false, "use formatted JSON output independent of -f option")
	fs.IntVar(&f.pretty, "pretty", 2, "indentation of YAML and formatted JSON output")
	fs.StringVar(&f.outputFile, "w", "", "write plans to output file")
}

func (f *Flags) Init() error {
	if f.jsonPretty {
		if f.Format != "yaml" && f.Format != "json" {
			return errors.New("cannot use -J with -f")
		}
		f.Format = "json"
	} else if f.Format == "json" {
		f.pretty = 0
	}
	if f.Format != "json" && f.Format != "yaml" {
		return fmt.Errorf("unknown output format: %q", f.Format)
	}
	if f.pretty < 0 {
		return errors.New("-pretty must not be negative")
	}
	if f.outputFile == "-" {
		f.outputFile = ""
	}
	return nil
}

func (f *Flags) FileName() string {
	return f.outputFile
}

// Writer encodes a stream of values in the selected format.
type Writer struct {
	closer io.Closer
	encode func(any) error
	flush  func() error
}

// Open returns a Writer to the output file or, if none was given, to stdout.
func (f *Flags) Open(stdout io.Writer) (*Writer, error) {
	w := &Writer{}
	if f.outputFile != "" {
		file, err := os.Create(f.outputFile)
		if err != nil {
			return nil, err
		}
		stdout, w.closer = file, file
	}
	switch f.Format {
	case "json":
		enc := json.NewEncoder(stdout)
		if f.pretty > 0 {
			enc.SetIndent("", fmt.Sprintf("%*s", f.pretty, ""))
		}
		w.encode = enc.Encode
	default:
		enc := yaml.NewEncoder(stdout)
		if f.pretty > 0 {
			enc.SetIndent(f.pretty)
		}
		w.encode, w.flush = enc.Encode, enc.Close
	}
	return w, nil
}

func (w *Writer) Write(v any) error {
	return w.encode(v)
}

func (w *Writer) Close() error {
	var err error
	if w.flush != nil {
		err = w.flush()
	}
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
