// Package crypto implements the crypto standard library (§4.7): hashing,
// AES-128-CBC with PKCS#7 padding, four base64 variants, and JSON
// detection. Grounded on the teacher's plain stdlib-crypto-wrapper style;
// gjson.Valid backs is_json per SPEC_FULL.md §B.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"os"

	"github.com/tidwall/gjson"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

func New() value.Dispatcher {
	return &library.Table{Name: "crypto", Methods: map[string]library.Method{
		"md5":         md5Method,
		"sha1":        sha1Method,
		"sha256":      sha256Method,
		"hash_file":   hashFile,
		"aes_encrypt": aesEncrypt,
		"aes_decrypt": aesDecrypt,
		"encode_b64":  encodeB64,
		"decode_b64":  decodeB64,
		"is_json":     isJSON,
	}}
}

func md5Method(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	b, err := oneBytesArg("md5", args)
	if err != nil {
		return value.None, err
	}
	sum := md5.Sum(b)
	return value.String(hex.EncodeToString(sum[:])), nil
}

func sha1Method(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	b, err := oneBytesArg("sha1", args)
	if err != nil {
		return value.None, err
	}
	sum := sha1.Sum(b)
	return value.String(hex.EncodeToString(sum[:])), nil
}

func sha256Method(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	b, err := oneBytesArg("sha256", args)
	if err != nil {
		return value.None, err
	}
	sum := sha256.Sum256(b)
	return value.String(hex.EncodeToString(sum[:])), nil
}

func oneBytesArg(fn string, args []value.Value) ([]byte, error) {
	if err := library.Arity(fn, args, 1); err != nil {
		return nil, err
	}
	switch args[0].Kind() {
	case value.KindBytes:
		return args[0].AsBytes(), nil
	case value.KindString:
		return []byte(args[0].AsString()), nil
	}
	return nil, library.MethodError(diag.TypeError, fn+"() expected bytes, got '"+args[0].Kind().String()+"'")
}

func hashFile(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("hash_file", args, 2); err != nil {
		return value.None, err
	}
	path, err := library.Str("hash_file", args[0])
	if err != nil {
		return value.None, err
	}
	algo, err := library.Str("hash_file", args[1])
	if err != nil {
		return value.None, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return value.None, err
	}
	var sum []byte
	switch algo {
	case "md5":
		s := md5.Sum(b)
		sum = s[:]
	case "sha1":
		s := sha1.Sum(b)
		sum = s[:]
	case "sha256":
		s := sha256.Sum256(b)
		sum = s[:]
	default:
		return value.None, library.MethodError(diag.ValueError, "hash_file() unsupported algorithm: "+algo)
	}
	return value.String(hex.EncodeToString(sum)), nil
}

// pkcs7Pad always appends a full block when the input length is already a
// multiple of the block size (SPEC_FULL.md §C / spec.md §4.7).
func pkcs7Pad(b []byte, blockSize int) []byte {
	padLen := blockSize - len(b)%blockSize
	pad := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte(nil), b...), pad...)
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, library.MethodError(diag.ValueError, "aes_decrypt() empty ciphertext")
	}
	padLen := int(b[len(b)-1])
	if padLen == 0 || padLen > len(b) {
		return nil, library.MethodError(diag.ValueError, "aes_decrypt() invalid padding")
	}
	return b[:len(b)-padLen], nil
}

func aesEncrypt(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("aes_encrypt", args, 3); err != nil {
		return value.None, err
	}
	key, err := library.Bytes("aes_encrypt", args[0])
	if err != nil {
		return value.None, err
	}
	iv, err := library.Bytes("aes_encrypt", args[1])
	if err != nil {
		return value.None, err
	}
	data, err := library.Bytes("aes_encrypt", args[2])
	if err != nil {
		return value.None, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return value.None, err
	}
	padded := pkcs7Pad(data, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return value.Bytes(out), nil
}

func aesDecrypt(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("aes_decrypt", args, 3); err != nil {
		return value.None, err
	}
	key, err := library.Bytes("aes_decrypt", args[0])
	if err != nil {
		return value.None, err
	}
	iv, err := library.Bytes("aes_decrypt", args[1])
	if err != nil {
		return value.None, err
	}
	data, err := library.Bytes("aes_decrypt", args[2])
	if err != nil {
		return value.None, err
	}
	if len(data)%aes.BlockSize != 0 {
		return value.None, library.MethodError(diag.ValueError, "aes_decrypt() ciphertext is not a multiple of the block size")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return value.None, err
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	unpadded, err := pkcs7Unpad(out)
	if err != nil {
		return value.None, err
	}
	return value.Bytes(unpadded), nil
}

func b64Encoding(variant string) (*base64.Encoding, error) {
	switch variant {
	case "STANDARD":
		return base64.StdEncoding, nil
	case "STANDARD_NO_PAD":
		return base64.RawStdEncoding, nil
	case "URL_SAFE":
		return base64.URLEncoding, nil
	case "URL_SAFE_NO_PAD":
		return base64.RawURLEncoding, nil
	}
	return nil, library.MethodError(diag.ValueError, "unknown base64 variant: "+variant)
}

func encodeB64(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("encode_b64", args, 2); err != nil {
		return value.None, err
	}
	content, err := oneBytesArg("encode_b64", args[:1])
	if err != nil {
		return value.None, err
	}
	variant, err := library.Str("encode_b64", args[1])
	if err != nil {
		return value.None, err
	}
	enc, err := b64Encoding(variant)
	if err != nil {
		return value.None, err
	}
	return value.String(enc.EncodeToString(content)), nil
}

func decodeB64(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("decode_b64", args, 2); err != nil {
		return value.None, err
	}
	content, err := library.Str("decode_b64", args[0])
	if err != nil {
		return value.None, err
	}
	variant, err := library.Str("decode_b64", args[1])
	if err != nil {
		return value.None, err
	}
	enc, err := b64Encoding(variant)
	if err != nil {
		return value.None, err
	}
	b, err := enc.DecodeString(content)
	if err != nil {
		return value.None, err
	}
	return value.Bytes(b), nil
}

func isJSON(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("is_json", args, 1); err != nil {
		return value.None, err
	}
	s, err := library.Str("is_json", args[0])
	if err != nil {
		return value.None, err
	}
	return value.Bool(gjson.Valid(s)), nil
}
