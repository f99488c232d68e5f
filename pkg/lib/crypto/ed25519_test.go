package crypto

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	priv, err := GenerateKey(nil)
	require.NoError(t, err, "生成密钥不应失败")
	assert.Len(t, priv, PrivateKeySize)

	pub, err := PublicKeyOf(priv)
	require.NoError(t, err)
	assert.Len(t, pub, PublicKeySize)
}

func TestUnmarshalPrivateKey(t *testing.T) {
	priv, err := GenerateKey(nil)
	require.NoError(t, err)
	pub, err := PublicKeyOf(priv)
	require.NoError(t, err)

	t.Run("Seed32", func(t *testing.T) {
		k, err := UnmarshalPrivateKey(priv.Seed())
		require.NoError(t, err)
		assert.True(t, PrivateKeysEqual(priv, k), "种子派生的私钥应与原私钥一致")
	})

	t.Run("Full64", func(t *testing.T) {
		k, err := UnmarshalPrivateKey(priv)
		require.NoError(t, err)
		assert.True(t, PrivateKeysEqual(priv, k))
	})

	t.Run("Redundant96", func(t *testing.T) {
		data := append(append([]byte{}, priv...), pub...)
		k, err := UnmarshalPrivateKey(data)
		require.NoError(t, err)
		assert.True(t, PrivateKeysEqual(priv, k))
	})

	t.Run("Redundant96Mismatch", func(t *testing.T) {
		bogus := make([]byte, PublicKeySize)
		data := append(append([]byte{}, priv...), bogus...)
		_, err := UnmarshalPrivateKey(data)
		require.Error(t, err, "冗余公钥不匹配应报错")
		assert.True(t, errors.Is(err, ErrInvalidPrivateKey))
	})

	t.Run("WrongSize", func(t *testing.T) {
		_, err := UnmarshalPrivateKey(make([]byte, 33))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidKeySize))
	})
}

func TestUnmarshalPublicKey(t *testing.T) {
	priv, err := GenerateKey(nil)
	require.NoError(t, err)
	pub, err := PublicKeyOf(priv)
	require.NoError(t, err)

	k, err := UnmarshalPublicKey(pub)
	require.NoError(t, err)
	assert.True(t, PublicKeysEqual(pub, k))

	_, err = UnmarshalPublicKey(make([]byte, 16))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidKeySize))
}

func TestKeysEqual(t *testing.T) {
	a, err := GenerateKey(nil)
	require.NoError(t, err)
	b, err := GenerateKey(nil)
	require.NoError(t, err)

	assert.True(t, PrivateKeysEqual(a, a))
	assert.False(t, PrivateKeysEqual(a, b))
	assert.False(t, PrivateKeysEqual(a, ed25519.PrivateKey(a.Seed())), "长度不同不应相等")

	pa, _ := PublicKeyOf(a)
	pb, _ := PublicKeyOf(b)
	assert.True(t, PublicKeysEqual(pa, pa))
	assert.False(t, PublicKeysEqual(pa, pb))
}
