// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ostafen/magicverify/internal/env"
	"github.com/ostafen/magicverify/internal/fs"
	"github.com/ostafen/magicverify/internal/signature"
	"github.com/spf13/cobra"
)

func DefineSignaturesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signatures",
		Short: "List the configured file signatures",
		Long: `The 'signatures' command loads and validates a signature file and prints its entries.
Each entry maps a file extension to the bytes a file with that extension is expected to start with.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         RunSignatures,
	}

	cmd.Flags().StringP("signatures", "c", "", "path to the signature file (.json, .toml or .yaml)")
	return cmd
}

func RunSignatures(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("signatures")

	path, err := signature.Locate(env.AppName, path)
	if err != nil {
		return err
	}

	table, err := signature.LoadFile(fs.OS(), path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EXTENSION\tBYTES\tSIGNATURE")

	for _, e := range table.Entries() {
		fmt.Fprintf(w, "%s\t%d\t%s\n", e.Ext, e.Len(), e.Hex)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d signatures loaded from %s (header size: %d bytes)\n", table.Len(), path, table.MaxBytes())
	return nil
}
