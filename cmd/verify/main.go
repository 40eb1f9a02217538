// Command verify is a thin demonstration CLI for the stateless block
// verifier: it reads a JSON chunk witness file, runs the chunk driver,
// and prints the result. It is ambient scaffolding around the library,
// not a production witness-ingestion tool (spec.md §1 excludes RPC
// dumpers, progress bars, and metrics); grounded on the teacher's
// cmd/eth2028/main.go flag+log idiom.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/scrollstateless/verifier/chainspec"
	"github.com/scrollstateless/verifier/chunk"
	"github.com/scrollstateless/verifier/core/types"
	"github.com/scrollstateless/verifier/executor"
	verifierlog "github.com/scrollstateless/verifier/log"
	"github.com/scrollstateless/verifier/witness"
)

func parseHash(s string) types.Hash { return types.HexToHash(s) }

func main() {
	os.Exit(run())
}

func run() int {
	witnessFile := flag.String("witness", "", "path to a JSON chunk witness file")
	scroll := flag.Bool("scroll", false, "verify as a Scroll L2 chunk instead of L1 Ethereum")
	euclidV2 := flag.Bool("euclidv2", false, "use the EuclidV2 public-input pipeline (Scroll L2 only)")
	prevMsgQueueHash := flag.String("prev-msg-queue-hash", "", "0x-prefixed prior rolling L1-message-queue hash (required with -euclidv2)")
	logLevel := flag.String("loglevel", "info", "verifier log verbosity (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	verifierlog.SetDefault(verifierlog.New(verifierlog.LevelFromString(*logLevel)))

	if *showVersion {
		fmt.Println("verify v0.1.0-dev")
		return 0
	}
	if *witnessFile == "" {
		log.Print("missing required -witness flag")
		return 1
	}

	data, err := os.ReadFile(*witnessFile)
	if err != nil {
		log.Printf("read witness file: %v", err)
		return 1
	}

	witnesses, err := witness.DecodeChunk(data)
	if err != nil {
		log.Printf("decode witness: %v", err)
		return 1
	}
	if len(witnesses) == 0 {
		log.Print("witness file contains no blocks")
		return 1
	}

	var rules chainspec.Rules
	if *scroll {
		rules = chainspec.ScrollL2(witnesses[0].ChainID, *euclidV2)
	} else {
		rules = chainspec.Ethereum(witnesses[0].ChainID)
	}

	driver := chunk.NewDriver(rules, &executor.Simple{})
	if *euclidV2 {
		if *prevMsgQueueHash == "" {
			log.Print("-euclidv2 requires -prev-msg-queue-hash")
			return 1
		}
		driver.SetPrevMsgQueueHash(parseHash(*prevMsgQueueHash))
	}

	result, err := driver.Run(witnesses)
	if err != nil {
		log.Printf("chunk verification failed: %v", err)
		return 1
	}

	fmt.Printf("post_state_root: %s\n", result.PostStateRoot.Hex())
	fmt.Printf("gas_used:        %d\n", result.GasUsed)
	if rules.WithdrawRootEnabled {
		fmt.Printf("withdraw_root:   %s\n", result.WithdrawRoot.Hex())
		fmt.Printf("pi_hash:         %s\n", result.PIHash.Hex())
		if rules.EuclidV2 {
			fmt.Printf("post_msg_queue_hash: %s\n", result.PostMsgQueueHash.Hex())
		}
	}
	return 0
}
