package circuits

// The circuits package contains the circuits of the DAO proposal flow and
// the helpers to store and fetch their artifacts. A DAO member proves that
// it owns an unspent coin of the DAO without revealing which one, and binds
// that proof to a commitment of the coin value, a commitment of its token
// and a fresh signing key:
//
//   1. The member builds the coin commitment from its secret and the coin
//      attributes, and derives the nullifier of the coin.
//   2. The nullifier slot is proven empty in the sparse nullifier tree, that
//      is, the coin has not been spent.
//   3. The coin is proven to be a leaf of the dense coin tree.
//   4. The value is committed with a Pedersen commitment and the token with
//      a hash commitment, so the DAO can tally voting power homomorphically.
//
// Every relation is checked by the ProposeInput circuit:
//
// +--------------+
// |   Propose    |  BabyJubJub (BN254)  	<- native
// |    Input     |  MiMC hash
// +--------------+
//
// Its public inputs, in order, are the nullifier root, the value commitment
// (x, y), the token commitment, the coin root and the signing key (x, y).
