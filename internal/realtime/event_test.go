package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Event
	}{
		{
			name: "message delivered",
			raw:  `{"type":"message_delivered","data":{"message":{"id":"m1","conversationId":"c1","senderId":"u2","receiverId":"u1","content":"hey"}}}`,
			want: MessageDelivered{Message: domain.Message{
				ID: "m1", ConversationID: "c1", SenderID: "u2", ReceiverID: "u1", Content: "hey",
			}},
		},
		{
			name: "message read",
			raw:  `{"type":"message_read","data":{"conversationId":"c1","messageId":"m1","readerId":"u2"}}`,
			want: MessageRead{ConversationID: "c1", MessageID: "m1", ReaderID: "u2"},
		},
		{
			name: "typing start derives the flag from the tag",
			raw:  `{"type":"typing_start","data":{"conversationId":"c1","userId":"u2"}}`,
			want: Typing{ConversationID: "c1", UserID: "u2", Start: true},
		},
		{
			name: "typing stop",
			raw:  `{"type":"typing_stop","data":{"conversationId":"c1","userId":"u2"}}`,
			want: Typing{ConversationID: "c1", UserID: "u2", Start: false},
		},
		{
			name: "user online",
			raw:  `{"type":"user_online","data":{"userId":"u2"}}`,
			want: Presence{UserID: "u2", Online: true},
		},
		{
			name: "user offline",
			raw:  `{"type":"user_offline","data":{"userId":"u2"}}`,
			want: Presence{UserID: "u2", Online: false},
		},
		{
			name: "post liked",
			raw:  `{"type":"post_liked","data":{"postId":"p1","userId":"u2","likesCount":4}}`,
			want: PostLiked{PostID: "p1", UserID: "u2", LikesCount: 4, Liked: true},
		},
		{
			name: "post unliked",
			raw:  `{"type":"post_unliked","data":{"postId":"p1","userId":"u2","likesCount":3}}`,
			want: PostLiked{PostID: "p1", UserID: "u2", LikesCount: 3, Liked: false},
		},
		{
			name: "post commented",
			raw:  `{"type":"post_commented","data":{"postId":"p1","userId":"u2","commentsCount":2}}`,
			want: PostCommented{PostID: "p1", UserID: "u2", CommentsCount: 2},
		},
		{
			name: "post saved",
			raw:  `{"type":"post_saved","data":{"postId":"p1","userId":"u2","savesCount":1}}`,
			want: PostSaved{PostID: "p1", UserID: "u2", SavesCount: 1, Saved: true},
		},
		{
			name: "new post",
			raw:  `{"type":"new_post","data":{"post":{"id":"p9","authorId":"u3","content":"hello"}}}`,
			want: NewPost{Post: domain.Post{ID: "p9", AuthorID: "u3", Content: "hello"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeEvent([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Type(), got.Type())
		})
	}
}

func TestDecodeEventErrors(t *testing.T) {
	_, err := decodeEvent([]byte(`{"type":"unknown_event","data":{}}`))
	assert.Error(t, err, "expected unknown type rejected")

	_, err = decodeEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = decodeEvent([]byte(`{"type":"post_liked","data":"not an object"}`))
	assert.Error(t, err)
}

func TestEncodeEventRoundTrip(t *testing.T) {
	raw, err := encodeEvent(Typing{ConversationID: "c1", UserID: "u1", Start: true})
	require.NoError(t, err)

	got, err := decodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, Typing{ConversationID: "c1", UserID: "u1", Start: true}, got)
}
