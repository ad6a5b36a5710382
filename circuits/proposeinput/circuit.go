// Package proposeinput implements the proposal input circuit: a Groth16
// relation over BN254 proving that the prover owns an unspent coin of the
// DAO coin set, committing to its value and token, and binding a signing
// key to the proposal.
package proposeinput

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/rangecheck"
	"github.com/vocdoni/gnark-crypto-primitives/utils"

	"github.com/vocdoni/dao-z-sandbox/circuits"
	"github.com/vocdoni/dao-z-sandbox/proposal"
)

type Circuit struct {
	// ---------------------------------------------------------------------------------------------
	// PUBLIC INPUTS, in the order of the public instance

	NullifierRoot   frontend.Variable    `gnark:",public"`
	ValueCommit     twistededwards.Point `gnark:",public"`
	TokenCommit     frontend.Variable    `gnark:",public"`
	CoinRoot        frontend.Variable    `gnark:",public"`
	SignaturePublic twistededwards.Point `gnark:",public"`

	// ---------------------------------------------------------------------------------------------
	// SECRET INPUTS

	Secret          frontend.Variable
	Value           frontend.Variable
	Token           frontend.Variable
	SpendHook       frontend.Variable
	UserData        frontend.Variable
	CoinBlind       frontend.Variable
	ValueBlind      frontend.Variable
	TokenBlind      frontend.Variable
	SignatureSecret frontend.Variable
	LeafPos         frontend.Variable
	CoinPath        CoinPath
	NullifierPath   NullifierPath

	params *proposal.Params
}

// Placeholder returns the circuit used to compile the constraint system. The
// params fix the generators and the empty subtree hashes as constants.
func Placeholder(p *proposal.Params) *Circuit {
	if p == nil {
		p = proposal.DefaultParams()
	}
	return &Circuit{params: p}
}

// Define declares the circuit's constraints
func (circuit Circuit) Define(api frontend.API) error {
	p := circuit.params
	if p == nil {
		p = proposal.DefaultParams()
	}
	if p.CoinTreeDepth != circuits.CoinTreeDepth || p.NullifierTreeDepth != circuits.NullifierTreeDepth {
		return fmt.Errorf("params tree depths %d/%d do not match the circuit %d/%d",
			p.CoinTreeDepth, p.NullifierTreeDepth, circuits.CoinTreeDepth, circuits.NullifierTreeDepth)
	}
	curve, err := twistededwards.NewEdCurve(api, circuits.EmbeddedCurve)
	if err != nil {
		return err
	}
	gens := gadgetGenerators{
		nullifierBase:  circuits.PointVars(p.Generators.NullifierBase),
		valueBaseShort: circuits.PointVars(p.Generators.ValueBaseShort),
		randomBase:     circuits.PointVars(p.Generators.RandomBase),
	}
	circuit.VerifyValueRange(api)
	coin := circuit.VerifyCoin(api, curve, gens, circuits.HashFn)
	circuit.VerifyNullifier(api, p, circuits.HashFn, coin)
	circuit.VerifyValueCommit(api, curve, gens)
	circuit.VerifyTokenCommit(api, circuits.HashFn)
	circuit.VerifyCoinMembership(api, circuits.HashFn, coin)
	circuit.VerifySigningKey(api, curve, gens)
	return nil
}

type gadgetGenerators struct {
	nullifierBase  twistededwards.Point
	valueBaseShort twistededwards.Point
	randomBase     twistededwards.Point
}

// VerifyValueRange constrains the coin value to an unsigned 64 bit integer.
func (circuit Circuit) VerifyValueRange(api frontend.API) {
	rangecheck.New(api).Check(circuit.Value, circuits.ValueBits)
}

// VerifyCoin derives the owner public key from the secret and returns the
// coin commitment
//
//	H(pub.x, pub.y, value, token, spend_hook, user_data, blind)
func (circuit Circuit) VerifyCoin(api frontend.API, curve twistededwards.Curve, gens gadgetGenerators, hFn utils.Hasher) frontend.Variable {
	pub := curve.ScalarMul(gens.nullifierBase, circuit.Secret)
	coin, err := hFn(api, pub.X, pub.Y, circuit.Value, circuit.Token,
		circuit.SpendHook, circuit.UserData, circuit.CoinBlind)
	if err != nil {
		circuits.FrontendError(api, "failed to hash coin: ", err)
	}
	return coin
}

// VerifyNullifier derives the nullifier H(secret, coin) and asserts that its
// slot in the nullifier tree is empty under NullifierRoot.
func (circuit Circuit) VerifyNullifier(api frontend.API, p *proposal.Params, hFn utils.Hasher, coin frontend.Variable) {
	nullifier, err := hFn(api, circuit.Secret, coin)
	if err != nil {
		circuits.FrontendError(api, "failed to hash nullifier: ", err)
	}
	root, err := circuit.NullifierPath.Root(api, p, hFn, nullifier, 0)
	if err != nil {
		circuits.FrontendError(api, "failed to compute nullifier root: ", err)
	}
	api.AssertIsEqual(root, circuit.NullifierRoot)
}

// VerifyValueCommit asserts value*ValueBaseShort + blind*RandomBase equals
// the public value commitment.
func (circuit Circuit) VerifyValueCommit(api frontend.API, curve twistededwards.Curve, gens gadgetGenerators) {
	commit := curve.DoubleBaseScalarMul(gens.valueBaseShort, gens.randomBase, circuit.Value, circuit.ValueBlind)
	api.AssertIsEqual(commit.X, circuit.ValueCommit.X)
	api.AssertIsEqual(commit.Y, circuit.ValueCommit.Y)
}

// VerifyTokenCommit asserts H(token, blind) equals the public token
// commitment.
func (circuit Circuit) VerifyTokenCommit(api frontend.API, hFn utils.Hasher) {
	commit, err := hFn(api, circuit.Token, circuit.TokenBlind)
	if err != nil {
		circuits.FrontendError(api, "failed to hash token commitment: ", err)
	}
	api.AssertIsEqual(commit, circuit.TokenCommit)
}

// VerifyCoinMembership asserts the coin is the leaf at LeafPos of the tree
// with root CoinRoot.
func (circuit Circuit) VerifyCoinMembership(api frontend.API, hFn utils.Hasher, coin frontend.Variable) {
	root, err := circuit.CoinPath.Root(api, hFn, circuit.LeafPos, coin)
	if err != nil {
		circuits.FrontendError(api, "failed to compute coin root: ", err)
	}
	api.AssertIsEqual(root, circuit.CoinRoot)
}

// VerifySigningKey asserts signature_secret*NullifierBase equals the public
// signing key.
func (circuit Circuit) VerifySigningKey(api frontend.API, curve twistededwards.Curve, gens gadgetGenerators) {
	pub := curve.ScalarMul(gens.nullifierBase, circuit.SignatureSecret)
	api.AssertIsEqual(pub.X, circuit.SignaturePublic.X)
	api.AssertIsEqual(pub.Y, circuit.SignaturePublic.Y)
}
