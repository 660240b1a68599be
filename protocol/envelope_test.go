package protocol

import (
	"testing"

	"chat-pulse/domain"

	"github.com/stretchr/testify/require"
)

func TestDecode_Known_Variant(t *testing.T) {
	req := require.New(t)

	// Given a message intent on the wire
	data := []byte(`{"type":"message","payload":{"chatId":42,"text":"hi"}}`)

	// When decoded
	env, err := Decode(data)
	req.NoError(err)

	// Then the tag is recognized and the payload round-trips typed
	req.True(env.Type.Known())
	intent, err := PayloadAs[MessageIntent](env)
	req.NoError(err)
	req.Equal(domain.ChatID(42), intent.ChatID)
	req.Equal("hi", intent.Text)
}

func TestDecode_Unknown_Tag_Is_Not_An_Error(t *testing.T) {
	req := require.New(t)

	env, err := Decode([]byte(`{"type":"subscribe","payload":{}}`))

	req.NoError(err)
	req.False(env.Type.Known())
}

func TestDecode_Garbage_Fails(t *testing.T) {
	req := require.New(t)

	_, err := Decode([]byte(`{not json`))

	req.Error(err)
}

func TestPayloadAs_Mismatched_Shape(t *testing.T) {
	req := require.New(t)

	env, err := Decode([]byte(`{"type":"auth","payload":{"userId":"not-a-number"}}`))
	req.NoError(err)

	_, err = PayloadAs[Auth](env)
	req.Error(err)
}

func TestNew_Round_Trip(t *testing.T) {
	req := require.New(t)

	env := New(TypeUserStatus, UserStatus{UserID: 7, Status: domain.StatusOffline})
	data, err := env.Encode()
	req.NoError(err)

	back, err := Decode(data)
	req.NoError(err)
	status, err := PayloadAs[UserStatus](back)
	req.NoError(err)
	req.Equal(domain.UserID(7), status.UserID)
	req.Equal(domain.StatusOffline, status.Status)
}
