// Package main provides the Arbor ML Framework CLI.
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arbor-ml/arbor/partitioning"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Arbor ML Framework %s\n", version)
			return
		case "rules":
			// Emit the standard partitioning rule set as a YAML file,
			// ready to edit and feed back via partitioning.LoadRules.
			data, err := yaml.Marshal(partitioning.StandardRules())
			if err != nil {
				fmt.Fprintf(os.Stderr, "arbor: %v\n", err)
				os.Exit(1)
			}
			_, _ = os.Stdout.Write(data)
			return
		}
	}

	fmt.Println("Arbor ML Framework - Training State for Distributed Loops")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  rules      Print the standard partitioning rules as YAML")
}
