package streaming

import (
	"fmt"
	"strings"

	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
)

func playlistKey(owner value.Principal, id uint64) value.Tuple {
	return value.Tuple{"owner": owner, "playlist-id": value.UInt(id)}
}

func loadPlaylist(ctx *contract.Context, owner value.Principal, id uint64) (Playlist, bool, error) {
	t, ok, err := playlists.GetTuple(ctx.Storage, playlistKey(owner, id))
	if err != nil || !ok {
		return Playlist{}, ok, err
	}
	p, err := playlistFromTuple(t)
	if err != nil {
		return Playlist{}, false, fmt.Errorf("playlist %s/%d: %w", owner, id, err)
	}
	return p, true, nil
}

func createPlaylist(ctx *contract.Context, args []value.Value) (value.Value, error) {
	id := argUInt(args, 0)
	p := Playlist{
		Name:      argString(args, 1),
		IsPublic:  argBool(args, 2),
		CreatedAt: ctx.BlockHeight,
	}
	_, exists, err := playlists.Get(ctx.Storage, playlistKey(ctx.Sender, id))
	if err != nil {
		return nil, err
	}
	if exists {
		return fail(ErrPlaylistExists)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fail(ErrInvalidInput)
	}
	if err := playlists.Set(ctx.Storage, playlistKey(ctx.Sender, id), p.Tuple()); err != nil {
		return nil, err
	}
	ctx.Print(event("create-playlist", value.Tuple{
		"owner":       ctx.Sender,
		"playlist-id": value.UInt(id),
	}))
	return okTrue()
}

func addToPlaylist(ctx *contract.Context, args []value.Value) (value.Value, error) {
	id := argUInt(args, 0)
	contentID := argUInt(args, 1)
	p, ok, err := loadPlaylist(ctx, ctx.Sender, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return fail(ErrPlaylistNotFound)
	}
	_, exists, err := contents.Get(ctx.Storage, value.UInt(contentID))
	if err != nil {
		return nil, err
	}
	if !exists {
		return fail(ErrContentNotFound)
	}
	if p.indexOf(contentID) >= 0 {
		return fail(ErrInvalidInput)
	}
	if len(p.Contents) >= MaxPlaylistSize {
		return fail(ErrPlaylistFull)
	}
	p.Contents = append(p.Contents, contentID)
	if err := playlists.Set(ctx.Storage, playlistKey(ctx.Sender, id), p.Tuple()); err != nil {
		return nil, err
	}
	ctx.Print(event("add-to-playlist", value.Tuple{
		"playlist-id": value.UInt(id),
		"content-id":  value.UInt(contentID),
	}))
	return okTrue()
}

func removeFromPlaylist(ctx *contract.Context, args []value.Value) (value.Value, error) {
	id := argUInt(args, 0)
	contentID := argUInt(args, 1)
	p, ok, err := loadPlaylist(ctx, ctx.Sender, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return fail(ErrPlaylistNotFound)
	}
	i := p.indexOf(contentID)
	if i < 0 {
		return fail(ErrContentNotFound)
	}
	p.Contents = append(p.Contents[:i], p.Contents[i+1:]...)
	if err := playlists.Set(ctx.Storage, playlistKey(ctx.Sender, id), p.Tuple()); err != nil {
		return nil, err
	}
	ctx.Print(event("remove-from-playlist", value.Tuple{
		"playlist-id": value.UInt(id),
		"content-id":  value.UInt(contentID),
	}))
	return okTrue()
}

// get-playlist hides private playlists from everyone but their owner
func getPlaylist(ctx *contract.Context, args []value.Value) (value.Value, error) {
	owner := argPrincipal(args, 0)
	p, ok, err := loadPlaylist(ctx, owner, argUInt(args, 1))
	if err != nil {
		return nil, err
	}
	if !ok || (!p.IsPublic && ctx.Sender != owner) {
		return value.None(), nil
	}
	return value.Some(p.Tuple()), nil
}
