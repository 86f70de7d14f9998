package desktop

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tunetime/internal/core"
	"tunetime/pkg/musiclink"
)

const (
	// CloudAppName is the scripting name of the cloud vendor's desktop app
	CloudAppName = "Spotify"
	// LocalAppName is the scripting name of the local media-library app
	LocalAppName = "Music"
)

// Player drives one native desktop application through OS scripting. Device
// ids are meaningless on this path and ignored.
type Player struct {
	kind   core.BackendKind
	app    string
	run    scriptRunner
	logger *zap.Logger
}

// NewCloudPlayer scripts the cloud vendor's desktop app.
func NewCloudPlayer(logger *zap.Logger) *Player {
	return &Player{
		kind:   core.BackendCloudDesktop,
		app:    CloudAppName,
		run:    runOsascript,
		logger: logger.Named("desktop-cloud"),
	}
}

// NewLocalPlayer scripts the local media-library app.
func NewLocalPlayer(logger *zap.Logger) *Player {
	return &Player{
		kind:   core.BackendLocalDesktop,
		app:    LocalAppName,
		run:    runOsascript,
		logger: logger.Named("desktop-local"),
	}
}

func (p *Player) Kind() core.BackendKind { return p.kind }

func (p *Player) Play(ctx context.Context, req core.PlayRequest) error {
	uri := req.TrackURI
	if uri == "" && req.TrackID != "" && p.kind == core.BackendCloudDesktop {
		uri = musiclink.TrackURI(req.TrackID)
	}

	var script string
	switch {
	case uri != "":
		script = tellApp(p.app, fmt.Sprintf("play track %q", uri))
	case req.PlaylistID != "" && p.kind == core.BackendCloudDesktop:
		script = tellApp(p.app, fmt.Sprintf("play track %q", musiclink.PlaylistURI(req.PlaylistID)))
	case req.PlaylistID != "":
		script = tellApp(p.app, fmt.Sprintf("play playlist %q", req.PlaylistID))
	default:
		script = tellApp(p.app, "play")
	}

	if _, err := p.run(ctx, script); err != nil {
		return err
	}
	p.logger.Debug("play issued", zap.String("uri", uri), zap.String("playlist", req.PlaylistID))
	return nil
}

func (p *Player) Pause(ctx context.Context, _ string) error {
	_, err := p.run(ctx, tellApp(p.app, "pause"))
	return err
}

func (p *Player) Next(ctx context.Context, _ string) error {
	_, err := p.run(ctx, tellApp(p.app, "next track"))
	return err
}

func (p *Player) Previous(ctx context.Context, _ string) error {
	_, err := p.run(ctx, tellApp(p.app, "previous track"))
	return err
}

// Launch activates the application, then narrows to the requested track when
// one was given and the launch was not requested quietly.
func (p *Player) Launch(ctx context.Context, opts core.LaunchOptions) error {
	if err := launchApp(ctx, p.run, p.app, p.logger); err != nil {
		return err
	}
	if opts.Quietly || (opts.TrackID == "" && opts.PlaylistID == "") {
		return nil
	}
	return p.Play(ctx, core.PlayRequest{TrackID: opts.TrackID, PlaylistID: opts.PlaylistID})
}
