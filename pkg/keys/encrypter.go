package keys

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/kms"
	"github.com/aws/aws-sdk-go/service/kms/kmsiface"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	versionKMS       = 1
	versionSecretbox = 2
)

const (
	boxKeySize   = 32
	boxNonceSize = 24
	boxKeyInfo   = "offen accounts private key encryption"
)

// Encrypter seals and opens private keys. Ciphers are serialized as
// "<version> <base64>" so that stored values keep decrypting when the
// encryption backend changes.
type Encrypter interface {
	Encrypt(ctx context.Context, plaintext []byte) (string, error)
	Decrypt(ctx context.Context, cipher string) ([]byte, error)
}

type sealer interface {
	seal(ctx context.Context, plaintext []byte) ([]byte, error)
	open(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// Keyring encrypts with its current backend and decrypts anything it holds a
// backend for.
type Keyring struct {
	current int
	sealers map[int]sealer
}

var _ Encrypter = &Keyring{}

// NewBoxKeyring returns a Keyring using NaCl secretbox with a key derived
// from secret.
func NewBoxKeyring(secret string) (*Keyring, error) {
	box, err := newBoxSealer(secret)
	if err != nil {
		return nil, err
	}
	return &Keyring{
		current: versionSecretbox,
		sealers: map[int]sealer{versionSecretbox: box},
	}, nil
}

// NewKMSKeyring returns a Keyring encrypting through AWS KMS. Values sealed
// with secretbox before KMS was enabled can still be opened.
func NewKMSKeyring(secret string, client kmsiface.KMSAPI, keyARN string) (*Keyring, error) {
	if client == nil || keyARN == "" {
		return nil, errors.New("keys: kms keyring needs a client and a key arn")
	}
	box, err := newBoxSealer(secret)
	if err != nil {
		return nil, err
	}
	return &Keyring{
		current: versionKMS,
		sealers: map[int]sealer{
			versionKMS:       &kmsSealer{client: client, keyARN: keyARN},
			versionSecretbox: box,
		},
	}, nil
}

// NewKMSClient creates a KMS client for the given region using the default
// AWS credential chain.
func NewKMSClient(region string) (kmsiface.KMSAPI, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "keys: error creating aws session")
	}
	return kms.New(sess), nil
}

func (k *Keyring) Encrypt(ctx context.Context, plaintext []byte) (string, error) {
	s, ok := k.sealers[k.current]
	if !ok {
		return "", errors.Errorf("keys: no backend for version %d", k.current)
	}
	ciphertext, err := s.seal(ctx, plaintext)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %s", k.current, base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func (k *Keyring) Decrypt(ctx context.Context, cipher string) ([]byte, error) {
	version, ciphertext, err := parseVersioned(cipher)
	if err != nil {
		return nil, err
	}
	s, ok := k.sealers[version]
	if !ok {
		return nil, errors.Errorf("keys: received unknown version %d for decrypting", version)
	}
	return s.open(ctx, ciphertext)
}

func parseVersioned(cipher string) (int, []byte, error) {
	parts := strings.SplitN(cipher, " ", 2)
	if len(parts) != 2 {
		return 0, nil, errors.New("keys: malformed versioned cipher")
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, nil, errors.Wrap(err, "keys: error parsing cipher version")
	}
	b, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return 0, nil, errors.Wrap(err, "keys: error decoding cipher")
	}
	return version, b, nil
}

type boxSealer struct {
	key [boxKeySize]byte
}

// DeriveKey derives a size byte key from secret with HKDF-SHA256. Distinct
// purposes yield independent keys.
func DeriveKey(secret, purpose string, size int) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("keys: cannot derive a key from an empty secret")
	}
	key := make([]byte, size)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, errors.Wrapf(err, "keys: error deriving %s key", purpose)
	}
	return key, nil
}

func newBoxSealer(secret string) (*boxSealer, error) {
	key, err := DeriveKey(secret, boxKeyInfo, boxKeySize)
	if err != nil {
		return nil, err
	}
	s := &boxSealer{}
	copy(s.key[:], key)
	return s, nil
}

func (b *boxSealer) seal(_ context.Context, plaintext []byte) ([]byte, error) {
	var nonce [boxNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "keys: error generating nonce")
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &b.key), nil
}

func (b *boxSealer) open(_ context.Context, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < boxNonceSize+secretbox.Overhead {
		return nil, errors.New("keys: ciphertext too short")
	}
	var nonce [boxNonceSize]byte
	copy(nonce[:], ciphertext[:boxNonceSize])
	plaintext, ok := secretbox.Open(nil, ciphertext[boxNonceSize:], &nonce, &b.key)
	if !ok {
		return nil, errors.New("keys: could not open secretbox")
	}
	return plaintext, nil
}

type kmsSealer struct {
	client kmsiface.KMSAPI
	keyARN string
}

func (k *kmsSealer) seal(ctx context.Context, plaintext []byte) ([]byte, error) {
	out, err := k.client.EncryptWithContext(ctx, &kms.EncryptInput{
		KeyId:     aws.String(k.keyARN),
		Plaintext: plaintext,
	})
	if err != nil {
		return nil, errors.Wrap(err, "keys: error encrypting with kms")
	}
	return out.CiphertextBlob, nil
}

func (k *kmsSealer) open(ctx context.Context, ciphertext []byte) ([]byte, error) {
	out, err := k.client.DecryptWithContext(ctx, &kms.DecryptInput{
		KeyId:          aws.String(k.keyARN),
		CiphertextBlob: ciphertext,
	})
	if err != nil {
		return nil, errors.Wrap(err, "keys: error decrypting with kms")
	}
	return out.Plaintext, nil
}
