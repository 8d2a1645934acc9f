// Package xid generates and manipulates the identifiers used throughout
// xudd: actor IDs, hive IDs, and message IDs.
//
// An actor ID has the form "local@hive", where local and hive are each a
// 22-character base64url encoding (no padding) of 16 random bytes. An ID
// with no "@" is unqualified; the reserved local part "hive" denotes the
// hive itself. A message ID has the form "<hive-uuid>:<counter>".
package xid

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// HiveLocalID is the reserved local-ID that denotes a hive acting as its
// own actor.
const HiveLocalID = "hive"

// qualifiedSep separates the local and hive parts of a qualified ID.
const qualifiedSep = "@"

// GenActorID returns a fresh, unqualified 22-character base64url token
// suitable for use as an actor's local ID.
func GenActorID() string {
	return randomToken()
}

// GenHiveUUID returns a fresh token fixed for the lifetime of a hive, used
// as the prefix of every message ID that hive generates.
func GenHiveUUID() string {
	return randomToken()
}

// randomToken encodes a v4 UUID's 16 raw bytes as base64url, producing a
// 22-character string with no padding.
func randomToken() string {
	raw := uuid.New()
	return base64.RawURLEncoding.EncodeToString(raw[:])
}

// GenMessageID formats a message ID from a hive's fixed UUID and the
// current value of its monotonic counter.
func GenMessageID(hiveUUID string, counter uint64) string {
	return fmt.Sprintf("%s:%s", hiveUUID, strconv.FormatUint(counter, 10))
}

// IsQualified reports whether id contains the "@" separator.
func IsQualified(id string) bool {
	return strings.Contains(id, qualifiedSep)
}

// Split divides a qualified ID into its local and hive parts, splitting on
// the first "@" only so that a hive part containing "@" is preserved
// intact. If id is unqualified, the returned hive option is None.
func Split(id string) (string, fn.Option[string]) {
	idx := strings.Index(id, qualifiedSep)
	if idx < 0 {
		return id, fn.None[string]()
	}

	return id[:idx], fn.Some(id[idx+1:])
}

// ErrAlreadyQualified is returned by Join when local already contains an
// "@" separator.
var ErrAlreadyQualified = fmt.Errorf("xid: local ID is already qualified")

// Join composes a qualified ID from an unqualified local part and a hive
// ID. It returns ErrAlreadyQualified if local is already qualified.
func Join(local, hiveID string) (string, error) {
	if IsQualified(local) {
		return "", fmt.Errorf("%w: %q", ErrAlreadyQualified, local)
	}

	return local + qualifiedSep + hiveID, nil
}

// Qualify returns id unchanged if it is already qualified or absent;
// otherwise it joins id with hiveID. Unlike Join, Qualify never errors: an
// already-qualified id is passed through rather than rejected, matching the
// permissive behavior spec.md assigns to the runtime's own ID-qualification
// path (as opposed to the caller-facing Join).
func Qualify(id fn.Option[string], hiveID string) fn.Option[string] {
	if id.IsNone() {
		return id
	}

	val := id.UnwrapOr("")
	if IsQualified(val) {
		return id
	}

	return fn.Some(val + qualifiedSep + hiveID)
}
