package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sigparty/gg18/coordinate"
	"github.com/sigparty/gg18/internal/mta"
	"github.com/sigparty/gg18/pkg/curve"
	"github.com/sigparty/gg18/pkg/ecdsa"
	"github.com/sigparty/gg18/protocols/signing"
)

var (
	numParties  int
	message     string
	publicKeyHx string
	rHex        string
	sHex        string
)

var rootCmd = &cobra.Command{
	Use:   "gg18-cli",
	Short: "Drive and inspect n-of-n GG18 threshold-ECDSA sessions",
	Long: `gg18-cli runs a local, in-process GG18 signing session across a
fixed set of parties, benchmarks the MtA subprotocol in isolation, and
verifies signatures produced by either.`,
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a full n-party signing session and print the signature",
	RunE:  runDemo,
}

var benchCmd = &cobra.Command{
	Use:   "mta-bench",
	Short: "Time a single pairwise MtA exchange",
	RunE:  runMtABench,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a signature against a public key and message",
	RunE:  runVerify,
}

func init() {
	demoCmd.Flags().IntVarP(&numParties, "parties", "n", 3, "number of signing parties")
	demoCmd.Flags().StringVarP(&message, "message", "m", "hello", "message to sign")

	verifyCmd.Flags().StringVar(&publicKeyHx, "public-key", "", "hex-encoded SEC1 uncompressed public key (required)")
	verifyCmd.Flags().StringVarP(&message, "message", "m", "", "message that was signed (required)")
	verifyCmd.Flags().StringVar(&rHex, "r", "", "hex-encoded signature r (required)")
	verifyCmd.Flags().StringVar(&sHex, "s", "", "hex-encoded signature s (required)")
	verifyCmd.MarkFlagRequired("public-key")
	verifyCmd.MarkFlagRequired("message")
	verifyCmd.MarkFlagRequired("r")
	verifyCmd.MarkFlagRequired("s")

	rootCmd.AddCommand(demoCmd, benchCmd, verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	if numParties < 2 {
		return fmt.Errorf("need at least 2 parties, got %d", numParties)
	}

	parties := make([]*signing.Party, numParties)
	for i := range parties {
		u := curve.SampleScalar(nil)
		parties[i] = signing.NewParty(i, numParties, u)
	}

	start := time.Now()
	sig, err := coordinate.Sign(context.Background(), parties, []byte(message))
	if err != nil {
		return fmt.Errorf("signing session failed: %w", err)
	}
	elapsed := time.Since(start)

	y := parties[0].PublicKey()
	pkBytes, err := y.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}

	fmt.Printf("parties:    %d\n", numParties)
	fmt.Printf("message:    %q\n", message)
	fmt.Printf("public key: %s\n", hex.EncodeToString(pkBytes))
	fmt.Printf("r:          %s\n", hex.EncodeToString(sig.R.Bytes()))
	fmt.Printf("s:          %s\n", hex.EncodeToString(sig.S.Bytes()))
	fmt.Printf("elapsed:    %s\n", elapsed)
	fmt.Printf("valid:      %v\n", ecdsa.Verify(y, []byte(message), sig))

	return nil
}

func runMtABench(cmd *cobra.Command, args []string) error {
	a := curve.SampleScalar(nil)
	b := curve.SampleScalar(nil)

	alice, err := mta.NewParty(a, mta.DefaultPaillierBits).Alicization()
	if err != nil {
		return fmt.Errorf("alicization: %w", err)
	}
	bob := mta.NewParty(b, mta.DefaultPaillierBits).Bobization()

	start := time.Now()
	init, err := alice.ToBob()
	if err != nil {
		return fmt.Errorf("to_bob: %w", err)
	}
	resp, err := bob.FromAlice(init)
	if err != nil {
		return fmt.Errorf("from_alice: %w", err)
	}
	if err := alice.FromBob(resp); err != nil {
		return fmt.Errorf("from_bob: %w", err)
	}
	elapsed := time.Since(start)

	alpha, err := alice.Result()
	if err != nil {
		return err
	}
	beta, err := bob.Result()
	if err != nil {
		return err
	}
	sum := alpha.Clone().Add(beta)
	product := a.Clone().Mul(b)

	fmt.Printf("elapsed: %s\n", elapsed)
	fmt.Printf("alpha + beta == a*b: %v\n", sum.Equal(product))
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	pkBytes, err := hex.DecodeString(publicKeyHx)
	if err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}
	y := &curve.Point{}
	if err := y.UnmarshalBinary(pkBytes); err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}

	rBytes, err := hex.DecodeString(rHex)
	if err != nil {
		return fmt.Errorf("decode r: %w", err)
	}
	sBytes, err := hex.DecodeString(sHex)
	if err != nil {
		return fmt.Errorf("decode s: %w", err)
	}

	sig := ecdsa.Signature{
		R: curve.NewScalar().SetBytes(rBytes),
		S: curve.NewScalar().SetBytes(sBytes),
	}

	if ecdsa.Verify(y, []byte(message), sig) {
		fmt.Println("valid")
		return nil
	}
	fmt.Println("invalid")
	return fmt.Errorf("signature did not verify")
}
