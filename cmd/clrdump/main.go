// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/saferwall/clrmeta/clrmeta"
	"github.com/spf13/cobra"
)

var (
	wantTypes      bool
	wantMembers    bool
	wantAttributes bool
)

// typeDump is the JSON shape of one dumped type, following
// pedumper.go's json.Marshal-a-struct reporting style.
type typeDump struct {
	Namespace        string   `json:"namespace"`
	Name             string   `json:"name"`
	IsPublic         bool     `json:"isPublic"`
	IsInterface      bool     `json:"isInterface"`
	IsAbstract       bool     `json:"isAbstract"`
	BaseType         string   `json:"baseType,omitempty"`
	Fields           []string `json:"fields,omitempty"`
	Methods          []string `json:"methods,omitempty"`
	CustomAttributes []string `json:"customAttributes,omitempty"`
}

type assemblyDump struct {
	Name             string     `json:"name"`
	Version          string     `json:"version"`
	Culture          string     `json:"culture,omitempty"`
	PublicKeyToken   string     `json:"publicKeyToken"`
	References       []string   `json:"references,omitempty"`
	Types            []typeDump `json:"types,omitempty"`
	CustomAttributes []string   `json:"customAttributes,omitempty"`
}

func describeType(t clrmeta.Type) (typeDump, error) {
	name, err := t.Name()
	if err != nil {
		return typeDump{}, err
	}
	namespace, err := t.Namespace()
	if err != nil {
		return typeDump{}, err
	}
	attrs, err := t.Attributes()
	if err != nil {
		return typeDump{}, err
	}
	td := typeDump{
		Namespace:   namespace,
		Name:        name,
		IsPublic:    attrs.IsPublic(),
		IsInterface: attrs.IsInterface(),
		IsAbstract:  attrs.IsAbstract(),
	}
	if base, err := t.BaseType(); err == nil && !base.IsZero() {
		if baseName, err := base.FullName(); err == nil {
			td.BaseType = baseName
		}
	}
	if wantMembers {
		fields, err := t.Fields(clrmeta.BindingDefault)
		if err != nil {
			return typeDump{}, err
		}
		for _, f := range fields {
			n, err := f.Name()
			if err != nil {
				return typeDump{}, err
			}
			td.Fields = append(td.Fields, n)
		}
		methods, err := t.Methods(clrmeta.BindingDefault)
		if err != nil {
			return typeDump{}, err
		}
		for _, m := range methods {
			n, err := m.Name()
			if err != nil {
				return typeDump{}, err
			}
			td.Methods = append(td.Methods, n)
		}
	}
	if wantAttributes {
		cas, err := t.CustomAttributes()
		if err != nil {
			return typeDump{}, err
		}
		td.CustomAttributes = describeCustomAttributes(cas)
	}
	return td, nil
}

func describeCustomAttributes(cas []clrmeta.CustomAttribute) []string {
	names := make([]string, 0, len(cas))
	for _, ca := range cas {
		ctor, err := ca.Constructor()
		if err != nil {
			names = append(names, fmt.Sprintf("<unresolved: %v>", err))
			continue
		}
		declaring, err := ctor.DeclaringType()
		if err != nil {
			names = append(names, "<unknown>")
			continue
		}
		full, err := declaring.FullName()
		if err != nil {
			names = append(names, "<unknown>")
			continue
		}
		names = append(names, full)
	}
	return names
}

func dumpAssembly(path string) (assemblyDump, error) {
	loader := clrmeta.NewLoader(nil, nil, nil)
	defer loader.Close()

	asm, err := loader.LoadByPath(path)
	if err != nil {
		return assemblyDump{}, err
	}

	name, err := asm.Name()
	if err != nil {
		return assemblyDump{}, err
	}
	dump := assemblyDump{
		Name:           name.Name,
		Version:        name.Version.String(),
		Culture:        name.Culture,
		PublicKeyToken: fmt.Sprintf("%x", name.PublicKeyToken),
	}

	refs, err := asm.ReferencedAssemblyNames()
	if err != nil {
		return assemblyDump{}, err
	}
	for _, r := range refs {
		dump.References = append(dump.References, r.FullName())
	}

	if wantAttributes {
		cas, err := asm.CustomAttributes()
		if err != nil {
			return assemblyDump{}, err
		}
		dump.CustomAttributes = describeCustomAttributes(cas)
	}

	if wantTypes || wantMembers {
		types, err := asm.Types()
		if err != nil {
			return assemblyDump{}, err
		}
		for _, t := range types {
			td, err := describeType(t)
			if err != nil {
				return assemblyDump{}, err
			}
			dump.Types = append(dump.Types, td)
		}
	}

	return dump, nil
}

func prettyPrint(v interface{}) string {
	buf, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	return string(buf)
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "clrdump",
		Short: "A CLI metadata reader for .NET assemblies",
		Long:  "Reads ECMA-335 CLI metadata out of a managed assembly and prints its logical model as JSON",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump <assembly>",
		Short: "Dumps an assembly's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dump, err := dumpAssembly(args[0])
			if err != nil {
				return err
			}
			fmt.Println(prettyPrint(dump))
			return nil
		},
	}
	dumpCmd.Flags().BoolVarP(&wantTypes, "types", "t", false, "Dump declared types")
	dumpCmd.Flags().BoolVarP(&wantMembers, "members", "m", false, "Dump fields and methods of each type (implies --types)")
	dumpCmd.Flags().BoolVarP(&wantAttributes, "attributes", "a", false, "Dump custom attributes")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
