// Command jwt-peek decodes a compact JWT and prints its header and payload
// without verifying the signature. It is an inspection tool; never treat
// its output as authenticated.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"lds.li/jwt/jws"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [token]\n\nReads the token from the first argument, or stdin if omitted.\nThe signature is NOT verified.\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	var token string
	if flag.NArg() > 0 {
		token = flag.Arg(0)
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading stdin: %v\n", err)
			os.Exit(1)
		}
		token = strings.TrimSpace(string(b))
	}

	tok, err := jws.Decode[map[string]any](token, jws.Insecure)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error decoding token: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"header":  tok.Header,
		"payload": tok.Payload,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "error encoding output: %v\n", err)
		os.Exit(1)
	}
}
