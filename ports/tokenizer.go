package ports

import "github.com/bazaar-labs/gatehouse/core"

// Tokenizer converts sessions to and from signed bearer tokens.
type Tokenizer interface {
	SessionToToken(session *core.Session) (string, error)
	TokenToSession(token string) (*core.Session, error)
}
