// main.go - gbcore CLI: run a cartridge, replay JSON vectors, print a title

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gbcore",
		Short: "Cycle-accurate Sharp SM83 CPU, PPU, and timer core",
	}

	rootCmd.AddCommand(newRunCmd(), newVectorsCmd(), newTitleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var bootPath string
	var cycles int
	var trace bool

	cmd := &cobra.Command{
		Use:   "run [rom]",
		Short: "Run a cartridge image for a fixed number of M-cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			romData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read rom: %w", err)
			}
			cart := NewCartridge(romData)

			var sys *System
			if bootPath != "" {
				bootData, err := os.ReadFile(bootPath)
				if err != nil {
					return fmt.Errorf("read boot rom: %w", err)
				}
				boot, err := LoadBootROM(bootData)
				if err != nil {
					return err
				}
				sys = NewSystemWithBootROM(cart, boot)
			} else {
				sys = NewSystem(cart)
			}
			sys.Log.SetTraceEnabled(trace)

			for i := 0; i < cycles; i++ {
				sys.RunCycle()
			}

			if out := sys.Serial.Output(); out != "" {
				fmt.Print(out)
			}
			sys.Log.TraceState(sys.CPU.Snapshot())
			return nil
		},
	}
	cmd.Flags().StringVar(&bootPath, "boot", "", "path to a 256-byte boot ROM image")
	cmd.Flags().IntVar(&cycles, "cycles", 1_000_000, "number of M-cycles to run")
	cmd.Flags().BoolVar(&trace, "trace", false, "log interrupt dispatches and the final register state to stderr")
	return cmd
}

func newVectorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vectors [dir]",
		Short: "Replay SingleStepTests-style JSON vector files and report mismatches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mismatches, err := RunVectorDir(args[0])
			if err != nil {
				return err
			}
			for _, m := range mismatches {
				fmt.Println(m.String())
			}
			fmt.Printf("%d mismatches\n", len(mismatches))
			if len(mismatches) > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
	return cmd
}

func newTitleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "title [rom]",
		Short: "Print a cartridge's header title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			romData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read rom: %w", err)
			}
			title, err := NewCartridge(romData).Title()
			if err != nil {
				return err
			}
			fmt.Println(title)
			return nil
		},
	}
	return cmd
}
