package rtc

import "github.com/pion/webrtc/v4"

var DefaultICEServers = []string{"stun:stun.l.google.com:19302"}

func WebRTCConfig(iceServers []string) webrtc.Configuration {
	if len(iceServers) == 0 {
		return webrtc.Configuration{}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: iceServers,
			},
		},
	}
}

// NewLocalAudio creates the outbound Opus track shared by every call of one
// participant.
func NewLocalAudio(streamID string) (*webrtc.TrackLocalStaticSample, error) {
	return webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
		"audio",
		streamID,
	)
}
