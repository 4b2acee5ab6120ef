package repository

import (
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/cinema-catalog/internal/config"
)

// MovieRef identifies a movie in one of the two identifier spaces.  A
// running service only ever builds refs of its configured scheme.
type MovieRef struct {
	scheme string
	uid    string
	oid    bson.ObjectID
}

// ParseMovieRef validates raw against scheme.  Malformed input yields a
// KindInvalidIdentifier error.
func ParseMovieRef(scheme, raw string) (MovieRef, error) {
	raw = strings.TrimSpace(raw)
	switch scheme {
	case config.IDSchemeObjectID:
		oid, err := ParseObjectID("movie", raw)
		if err != nil {
			return MovieRef{}, err
		}
		return MovieRef{scheme: scheme, oid: oid}, nil
	default:
		// uuid.Parse also accepts urn: and braced forms; only the canonical
		// 36-character form is a valid uid.
		if len(raw) != 36 {
			return MovieRef{}, InvalidIdentifier("movie", raw)
		}
		u, err := uuid.Parse(raw)
		if err != nil {
			return MovieRef{}, InvalidIdentifier("movie", raw)
		}
		return MovieRef{scheme: config.IDSchemeUID, uid: u.String()}, nil
	}
}

// Filter returns the store filter selecting the referenced movie.
func (r MovieRef) Filter() bson.M {
	if r.scheme == config.IDSchemeObjectID {
		return bson.M{"_id": r.oid}
	}
	return bson.M{"uid": r.uid}
}

func (r MovieRef) String() string {
	if r.scheme == config.IDSchemeObjectID {
		return r.oid.Hex()
	}
	return r.uid
}

// ParseObjectID parses a hex ObjectID for entity.
func ParseObjectID(entity, raw string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return bson.ObjectID{}, InvalidIdentifier(entity, raw)
	}
	return oid, nil
}
