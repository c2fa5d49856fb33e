//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Module compiles every package in the module.
func (Build) Module() error {
	_, err := executeCmd("go", withArgs("build", "./..."), withStream())
	return err
}

// Test vets and runs the full test suite.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Tidy syncs go.mod with the import graph.
func (Build) Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"), withStream())
	return err
}
