package api

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vocdoni/dao-z-sandbox/log"
	"github.com/vocdoni/dao-z-sandbox/state"
)

// maxDAOIDSize bounds the database prefix a DAO is stored under.
const maxDAOIDSize = 32

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// daoState resolves the DAO of the request URL and returns its state. On
// failure the error has already been written.
func (a *API) daoState(w http.ResponseWriter, r *http.Request) (*state.State, bool) {
	daoID, err := hex.DecodeString(strings.TrimPrefix(chi.URLParam(r, DAOURLParam), "0x"))
	if err != nil || len(daoID) == 0 || len(daoID) > maxDAOIDSize {
		ErrMalformedDAOID.Write(w)
		return nil, false
	}
	s, err := a.state(daoID)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return nil, false
	}
	return s, true
}

func leafPosParam(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, LeafPosURLParam), 10, 64)
}

func nullifierParam(r *http.Request) (*big.Int, bool) {
	n, ok := new(big.Int).SetString(chi.URLParam(r, NullifierURLParam), 10)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}

func proposalKeyParam(r *http.Request) ([]byte, bool) {
	key, err := hex.DecodeString(strings.TrimPrefix(chi.URLParam(r, ProposalURLParam), "0x"))
	if err != nil || len(key) == 0 {
		return nil, false
	}
	return key, true
}
