package ticket

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/skip2/go-qrcode"
)

// Confirmation is the payload embedded in a registration's QR ticket.
type Confirmation struct {
	RegistrationID string    `json:"registrationId"`
	EventID        string    `json:"eventId"`
	Email          string    `json:"email"`
	Code           string    `json:"code"`
	IssuedAt       time.Time `json:"issuedAt"`
}

// QRGenerator renders AES-encrypted confirmation payloads as QR codes so a
// scanned ticket cannot be forged without the gateway secret.
type QRGenerator struct {
	secret []byte
}

// NewQRGenerator normalizes the secret to a 32-byte key.
func NewQRGenerator(secret string) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret))
	return &QRGenerator{secret: hashed[:]}
}

// GenerateEncryptedQR returns a PNG-encoded QR code of the encrypted
// confirmation.
func (q *QRGenerator) GenerateEncryptedQR(confirmation Confirmation) ([]byte, error) {
	data, err := json.Marshal(confirmation)
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, q.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

// Decrypt reverses encryptAES, for scanners that share the secret.
func (q *QRGenerator) Decrypt(encoded string) (*Confirmation, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(raw) < aes.BlockSize {
		return nil, errors.New("ciphertext shorter than one AES block")
	}

	block, err := aes.NewCipher(q.secret)
	if err != nil {
		return nil, err
	}

	iv := raw[:aes.BlockSize]
	data := raw[aes.BlockSize:]
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, data)

	var confirmation Confirmation
	if err := json.Unmarshal(data, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
