// Package relay serves a built-in HTML client for exercising the danmaku
// protocol by hand.
package relay

import (
	"fmt"
	"net/http"
)

// TestPageHandler serves a minimal web client: it connects to /ws, performs
// the auth handshake for a chosen room and username, sends danmaku frames,
// and renders everything the server pushes back.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Danmaku Relay Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #111;
            color: #eee;
        }
        input[type="text"] { padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; cursor: pointer; }
        .system { color: #999; font-style: italic; }
    </style>
</head>
<body>
    <h1>Danmaku Relay Test</h1>

    <div>
        <input type="text" id="room" placeholder="room id" value="default">
        <input type="text" id="username" placeholder="username (optional)">
        <button id="joinButton" onclick="join()">Join</button>
    </div>

    <div id="messages"></div>

    <div>
        <input type="text" id="content" placeholder="Type a danmaku..." disabled>
        <button id="sendButton" onclick="sendDanmaku()" disabled>Send</button>
    </div>

    <script>
        let ws = null;
        const messagesDiv = document.getElementById('messages');

        function addLine(text, cls) {
            const line = document.createElement('div');
            if (cls) line.className = cls;
            line.textContent = text;
            messagesDiv.appendChild(line);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function join() {
            if (ws) ws.close();
            const scheme = location.protocol === 'https:' ? 'wss' : 'ws';
            ws = new WebSocket(scheme + '://' + location.host + '/ws');

            ws.onopen = function() {
                ws.send(JSON.stringify({
                    type: 'auth',
                    room_id: document.getElementById('room').value,
                    username: document.getElementById('username').value
                }));
            };

            ws.onmessage = function(event) {
                const msg = JSON.parse(event.data);
                switch (msg.type) {
                case 'auth_success':
                    addLine('joined room ' + msg.room_id + ' as ' + msg.user_id, 'system');
                    document.getElementById('content').disabled = false;
                    document.getElementById('sendButton').disabled = false;
                    break;
                case 'danmaku':
                    addLine(msg.username + ': ' + msg.content);
                    break;
                case 'system':
                    addLine(msg.message, 'system');
                    break;
                case 'heartbeat':
                    break;
                default:
                    addLine(event.data, 'system');
                }
            };

            ws.onclose = function() {
                addLine('connection closed', 'system');
                document.getElementById('content').disabled = true;
                document.getElementById('sendButton').disabled = true;
                ws = null;
            };
        }

        function sendDanmaku() {
            const input = document.getElementById('content');
            const content = input.value.trim();
            if (content && ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({type: 'danmaku', content: content}));
                input.value = '';
            }
        }

        document.getElementById('content').addEventListener('keypress', function(e) {
            if (e.key === 'Enter') sendDanmaku();
        });
    </script>
</body>
</html>`
	if _, err := fmt.Fprint(w, html); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
