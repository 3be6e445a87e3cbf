package server

import (
	"fmt"
	"net/http"
)

// TestPageHandler serves a minimal HTML client for poking at the relay from
// a browser. It sends plain text frames and prints whatever comes back; it
// performs no encryption.
func (s *Server) TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPageHTML); err != nil {
		s.log.Warn("Error writing HTML response", "error", err)
	}
}

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Relay WebSocket Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages { border: 1px solid #ccc; height: 300px; padding: 10px; overflow-y: scroll; margin: 10px 0; }
        .system { color: gray; font-style: italic; }
        .key { color: purple; }
    </style>
</head>
<body>
    <h1>Relay WebSocket Test</h1>
    <div>
        <input type="text" id="username" placeholder="Username">
        <input type="text" id="token" placeholder="Token (optional)">
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
    </div>
    <div id="messages"></div>
    <div>
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
    </div>

    <script>
        let ws = null;
        const messages = document.getElementById('messages');
        const input = document.getElementById('messageInput');

        function show(text, cls) {
            const line = document.createElement('div');
            line.textContent = text;
            if (cls) line.className = cls;
            messages.appendChild(line);
            messages.scrollTop = messages.scrollHeight;
        }

        function setConnected(connected) {
            input.disabled = !connected;
            document.getElementById('sendButton').disabled = !connected;
            document.getElementById('connectButton').textContent = connected ? 'Disconnect' : 'Connect';
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) { ws.close(); return; }
            const username = encodeURIComponent(document.getElementById('username').value.trim());
            const token = document.getElementById('token').value.trim();
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            let url = scheme + location.host + '/ws/' + username;
            if (token) url += '?token=' + encodeURIComponent(token);

            ws = new WebSocket(url);
            ws.onopen = () => { show('Connected', 'system'); setConnected(true); };
            ws.onmessage = (event) => {
                const data = event.data;
                if (data.startsWith('[KEY] ')) show(data, 'key');
                else if (data.startsWith('[Encrypted] ')) show(data);
                else show(data, 'system');
            };
            ws.onclose = () => { show('Connection closed', 'system'); setConnected(false); ws = null; };
        }

        function sendMessage() {
            const text = input.value;
            if (ws && ws.readyState === WebSocket.OPEN) { ws.send(text); input.value = ''; }
        }

        input.addEventListener('keypress', (e) => { if (e.key === 'Enter') sendMessage(); });
    </script>
</body>
</html>`
