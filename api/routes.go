package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"

	// DAOURLParam is the hex encoded identifier of a DAO
	DAOURLParam = "daoId"
	daoPrefix   = "/daos/{" + DAOURLParam + "}"

	// RootsEndpoint returns the current coin and nullifier roots of a DAO
	RootsEndpoint = daoPrefix + "/roots"
	// CoinsEndpoint appends a coin commitment to the coin tree
	CoinsEndpoint = daoPrefix + "/coins"
	// LeafPosURLParam is the position of a coin in the coin tree
	LeafPosURLParam = "leafPos"
	// CoinPathEndpoint returns the authentication path of a coin
	CoinPathEndpoint = CoinsEndpoint + "/{" + LeafPosURLParam + "}/path"
	// NullifiersEndpoint marks a nullifier as spent
	NullifiersEndpoint = daoPrefix + "/nullifiers"
	// NullifierURLParam is a nullifier in decimal form
	NullifierURLParam = "nullifier"
	// NullifierPathEndpoint returns the sparse path of a nullifier slot
	NullifierPathEndpoint = NullifiersEndpoint + "/{" + NullifierURLParam + "}/path"

	// DAOProposalsEndpoint receives the proven proposal inputs of a DAO
	DAOProposalsEndpoint = daoPrefix + "/proposals"
	// ProposalsEndpoint lists the keys of the stored proposals
	ProposalsEndpoint = "/proposals"
	// ProposalURLParam is the hex encoded key of a stored proposal
	ProposalURLParam = "proposalKey"
	// ProposalEndpoint returns a stored proposal
	ProposalEndpoint = ProposalsEndpoint + "/{" + ProposalURLParam + "}"
)
