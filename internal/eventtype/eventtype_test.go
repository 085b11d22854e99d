package eventtype

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ScanSuite struct {
	suite.Suite
}

func TestScanSuite(t *testing.T) {
	suite.Run(t, new(ScanSuite))
}

func (s *ScanSuite) TestURLVerification() {
	d, err := Scan([]byte(`{"type":"url_verification","challenge":"x"}`))

	s.Require().NoError(err)
	s.Assert().Equal("url_verification", d.DispatchType)
	s.Assert().Empty(d.EventType)
	s.Assert().False(d.HasEventType())
}

func (s *ScanSuite) TestEventCallback() {
	d, err := Scan([]byte(`{"type":"event_callback","event":{"type":"message"}}`))

	s.Require().NoError(err)
	s.Assert().Equal("event_callback", d.DispatchType)
	s.Assert().Equal("message", d.EventType)
}

func (s *ScanSuite) TestEventBeforeType() {
	raw := []byte(`{
		"token": "XXYYZZ",
		"team_id": "T123ABC456",
		"event": {"user": "U123ABC456", "type": "app_mention", "text": "hi"},
		"type": "event_callback",
		"authed_users": ["U123ABC456"]
	}`)
	d, err := Scan(raw)

	s.Require().NoError(err)
	s.Assert().Equal("event_callback", d.DispatchType)
	s.Assert().Equal("app_mention", d.EventType)
}

func (s *ScanSuite) TestNonObjectRoots() {
	tests := map[string]string{
		"array":  `[{"type":"event_callback"}]`,
		"string": `"event_callback"`,
		"number": `42`,
		"bool":   `true`,
		"null":   `null`,
	}

	for name, raw := range tests {
		s.Run(name, func() {
			d, err := Scan([]byte(raw))

			s.Require().NoError(err)
			s.Assert().Equal(Discriminators{}, d)
		})
	}
}

func (s *ScanSuite) TestNonStringTypesIgnored() {
	d, err := Scan([]byte(`{"type":7,"event":{"type":{"nested":"message"}}}`))

	s.Require().NoError(err)
	s.Assert().False(d.HasDispatchType())
	s.Assert().False(d.HasEventType())
}

func (s *ScanSuite) TestEventNotObject() {
	d, err := Scan([]byte(`{"type":"event_callback","event":"message"}`))

	s.Require().NoError(err)
	s.Assert().Equal("event_callback", d.DispatchType)
	s.Assert().Empty(d.EventType)
}

func (s *ScanSuite) TestRepeatedEventLastWins() {
	tests := map[string]struct {
		raw  string
		want string
	}{
		"object then string": {raw: `{"event":{"type":"message"},"event":"x"}`, want: ""},
		"object then object": {raw: `{"event":{"type":"message"},"event":{"type":"app_mention"}}`, want: "app_mention"},
		"string then object": {raw: `{"event":"x","event":{"type":"reaction_added"}}`, want: "reaction_added"},
	}

	for name, tt := range tests {
		s.Run(name, func() {
			d, err := Scan([]byte(tt.raw))

			s.Require().NoError(err)
			s.Assert().Equal(tt.want, d.EventType)
		})
	}
}

func (s *ScanSuite) TestDeepTypeNotPromoted() {
	d, err := Scan([]byte(`{"event":{"item":{"type":"message"}},"payload":{"type":"block_actions"}}`))

	s.Require().NoError(err)
	s.Assert().Empty(d.DispatchType)
	s.Assert().Empty(d.EventType)
}

func (s *ScanSuite) TestMalformed() {
	tests := map[string]string{
		"empty":                           ``,
		"truncated":                       `{"type":"event_callback"`,
		"unquoted key":                    `{type:"event_callback"}`,
		"trailing garbage":                `{"type":"event_callback"} x`,
		"invalid utf-8":                   "{\"type\":\"a\xff\"}",
		"invalid utf-8 in ignored member": "{\"type\":\"event_callback\",\"text\":\"\xc3\x28\"}",
	}

	for name, raw := range tests {
		s.Run(name, func() {
			_, err := Scan([]byte(raw))

			s.Assert().ErrorIs(err, ErrMalformed)
		})
	}
}
