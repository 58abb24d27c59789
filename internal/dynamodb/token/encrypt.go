package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"philcali.me/groceries/internal/data"
	"philcali.me/groceries/internal/exceptions"
)

type EncryptMode func(cipher.Block) (cipher.AEAD, error)

type EncryptionTokenMarshaler struct {
	Mode EncryptMode
}

func NewGCM() *EncryptionTokenMarshaler {
	return &EncryptionTokenMarshaler{
		Mode: cipher.NewGCM,
	}
}

type sealed struct {
	Nonce      []byte `json:"n"`
	Ciphertext []byte `json:"c"`
}

func lastKeyToCursor(lastKey map[string]types.AttributeValue) ([]byte, error) {
	cursor := make(data.NextToken, len(lastKey))
	for field, value := range lastKey {
		switch v := value.(type) {
		case *types.AttributeValueMemberS:
			cursor[field] = map[string]string{"S": v.Value}
		case *types.AttributeValueMemberN:
			cursor[field] = map[string]string{"N": v.Value}
		case *types.AttributeValueMemberB:
			cursor[field] = map[string]string{"B": base64.StdEncoding.EncodeToString(v.Value)}
		default:
			return nil, fmt.Errorf("unsupported key attribute %s: %T", field, value)
		}
	}
	return json.Marshal(cursor)
}

func cursorToLastKey(plaintext []byte) (map[string]types.AttributeValue, error) {
	var cursor data.NextToken
	if err := json.Unmarshal(plaintext, &cursor); err != nil {
		return nil, err
	}
	lastKey := make(map[string]types.AttributeValue, len(cursor))
	for field, value := range cursor {
		if s, ok := value["S"]; ok {
			lastKey[field] = &types.AttributeValueMemberS{Value: s}
		} else if n, ok := value["N"]; ok {
			lastKey[field] = &types.AttributeValueMemberN{Value: n}
		} else if b, ok := value["B"]; ok {
			raw, err := base64.StdEncoding.DecodeString(b)
			if err != nil {
				return nil, err
			}
			lastKey[field] = &types.AttributeValueMemberB{Value: raw}
		}
	}
	return lastKey, nil
}

func (em *EncryptionTokenMarshaler) aead(ownerId string) (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(ownerId))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return em.Mode(block)
}

// Marshal returns nil for an empty key: there is no next page.
func (em *EncryptionTokenMarshaler) Marshal(ownerId string, lastKey map[string]types.AttributeValue) ([]byte, error) {
	if len(lastKey) == 0 {
		return nil, nil
	}
	plaintext, err := lastKeyToCursor(lastKey)
	if err != nil {
		return nil, err
	}
	aead, err := em.aead(ownerId)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(sealed{
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, []byte(ownerId)),
	})
	if err != nil {
		return nil, err
	}
	encoded := make([]byte, base64.RawURLEncoding.EncodedLen(len(payload)))
	base64.RawURLEncoding.Encode(encoded, payload)
	return encoded, nil
}

// Unmarshal reports a tampered or foreign cursor as invalid input.
func (em *EncryptionTokenMarshaler) Unmarshal(ownerId string, token []byte) (map[string]types.AttributeValue, error) {
	if len(token) == 0 {
		return nil, nil
	}
	payload := make([]byte, base64.RawURLEncoding.DecodedLen(len(token)))
	n, err := base64.RawURLEncoding.Decode(payload, token)
	if err != nil {
		return nil, exceptions.InvalidInput("nextToken is malformed")
	}
	var box sealed
	if err := json.Unmarshal(payload[:n], &box); err != nil {
		return nil, exceptions.InvalidInput("nextToken is malformed")
	}
	aead, err := em.aead(ownerId)
	if err != nil {
		return nil, err
	}
	if len(box.Nonce) != aead.NonceSize() {
		return nil, exceptions.InvalidInput("nextToken is malformed")
	}
	plaintext, err := aead.Open(nil, box.Nonce, box.Ciphertext, []byte(ownerId))
	if err != nil {
		return nil, exceptions.InvalidInput("nextToken was not issued to this owner")
	}
	return cursorToLastKey(plaintext)
}
