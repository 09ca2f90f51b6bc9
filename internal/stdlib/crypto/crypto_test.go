package crypto

import (
	"testing"

	"github.com/spellshift/eldritch/internal/value"
)

func call(t *testing.T, d value.Dispatcher, method string, args ...value.Value) value.Value {
	t.Helper()
	v, err := d.Dispatch(method, args, nil)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return v
}

func TestMD5KnownVector(t *testing.T) {
	v := call(t, New(), "md5", value.String(""))
	if v.AsString() != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("got %q", v.AsString())
	}
}

func TestSHA256KnownVector(t *testing.T) {
	v := call(t, New(), "sha256", value.String(""))
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if len(want) != 64 {
		t.Fatalf("test fixture itself is malformed: %d hex chars, want 64", len(want))
	}
	if v.AsString() != want {
		t.Fatalf("got %q, want %q", v.AsString(), want)
	}
}

func TestAESEncryptDecryptRoundTrip(t *testing.T) {
	key := value.Bytes([]byte("0123456789abcdef"))
	iv := value.Bytes([]byte("abcdef0123456789"))
	plain := value.Bytes([]byte("attack at dawn!!"))
	enc := call(t, New(), "aes_encrypt", key, iv, plain)
	dec := call(t, New(), "aes_decrypt", key, iv, enc)
	if string(dec.AsBytes()) != "attack at dawn!!" {
		t.Fatalf("got %q, want round-trip to recover the plaintext", dec.AsBytes())
	}
}

func TestBase64StandardRoundTrip(t *testing.T) {
	enc := call(t, New(), "encode_b64", value.String("hello"), value.String("STANDARD"))
	dec := call(t, New(), "decode_b64", enc, value.String("STANDARD"))
	if string(dec.AsBytes()) != "hello" {
		t.Fatalf("got %q, want hello", dec.AsBytes())
	}
}

func TestBase64UnknownVariant(t *testing.T) {
	if _, err := New().Dispatch("encode_b64", []value.Value{value.String("x"), value.String("BOGUS")}, nil); err == nil {
		t.Fatal("expected an error for an unknown base64 variant")
	}
}

func TestIsJSON(t *testing.T) {
	if !call(t, New(), "is_json", value.String(`{"a":1}`)).AsBool() {
		t.Fatal("expected valid JSON to report true")
	}
	if call(t, New(), "is_json", value.String(`not json`)).AsBool() {
		t.Fatal("expected invalid JSON to report false")
	}
}
