//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the importer demo against the given model file.
func (Run) Importer(model string) error {
	fmt.Println("Run importer...")
	if _, err := executeCmd("go", withArgs("run", "main.go", model), withStream()); err != nil {
		return err
	}
	return nil
}
