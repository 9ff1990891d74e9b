package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"

	"github.com/noah-isme/storefront-cart/internal/discount"
)

// discountgen prints random discount codes, or a registry file loadable via
// CART_CONFIG_FILE when -percent is set.
func main() {
	count := flag.Int("n", 1, "number of codes to generate")
	length := flag.Int("length", 20, "characters per code, excluding dashes")
	percent := flag.Int("percent", 0, "emit a YAML registry giving every code this percentage")
	flag.Parse()

	if *count <= 0 {
		fmt.Fprintln(os.Stderr, "discountgen: -n must be positive")
		os.Exit(2)
	}
	if *percent < 0 || *percent > 100 {
		fmt.Fprintln(os.Stderr, "discountgen: -percent must be within 0..100")
		os.Exit(2)
	}

	codes := make([]string, 0, *count)
	for len(codes) < *count {
		code, err := discount.Generate(*length)
		if err != nil {
			fmt.Fprintf(os.Stderr, "discountgen: %v\n", err)
			os.Exit(1)
		}
		codes = append(codes, code)
	}

	if *percent == 0 {
		for _, code := range codes {
			fmt.Println(code)
		}
		return
	}

	entries := make(map[string]any, len(codes))
	for _, code := range codes {
		entries[code] = *percent
	}
	out, err := yaml.Parser().Marshal(map[string]any{"discounts": entries})
	if err != nil {
		fmt.Fprintf(os.Stderr, "discountgen: %v\n", err)
		os.Exit(1)
	}
	_, _ = os.Stdout.Write(out)
}
