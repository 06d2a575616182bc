// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package timedtext

import (
	"fmt"
	"html/template"
	"strings"
)

// viewerPage is a self-contained HTML player: an HLS video element with the
// subtitle track attached as metadata, a canvas that draws the tracked
// bounding boxes on cue changes, and a control panel that lets the user pick
// objects and copy a deep link replaying only those objects.
var viewerPage = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Video with WebVTT timed metadata</title>
  <style>
    body {
      display: flex;
      flex-direction: column;
      justify-content: flex-start;
      align-items: flex-start;
      height: 100vh;
      background-color: #f0f0f0;
    }
    video {
      width: 60%;
      height: auto;
      border: 2px solid #333;
      border-radius: 10px;
      box-shadow: 0 4px 8px rgba(0, 0, 0, 0.2);
      transition: transform 0.3s;
    }
    button {
      margin: 10px;
      padding: 10px 20px;
      font-size: 1em;
    }
    video:hover {
      transform: scale(1.05);
    }
    .overlay {
      display: none;
      position: absolute;
      background-color: rgba(0, 0, 0, 0.0);
      color: red;
      border: 2px solid #333;
      border-radius: 10px;
      box-shadow: 0 4px 8px rgba(0, 0, 0, 0.2);
      font-size: 0.6em;
      text-align: left;
      width: 60%;
      transition: opacity 0.3s;
    }
    .ctrl {
      display: none;
      background-color: rgba(0, 0, 0, 0.7);
      color: white;
      padding: 10px;
      border-radius: 5px;
      font-size: 1.2em;
      text-align: left;
      width: 60%;
      max-width: 800px;
      box-shadow: 0 4px 8px rgba(0, 0, 0, 0.2);
      transition: opacity 0.3s;
    }
    .ctrl:hover {
      opacity: 0.8;
    }
  </style>
</head>
<body>
  <video>
    <source src="{{.VideoPath}}" type="application/vnd.apple.mpegurl" />
    <track src="{{.TrackPath}}" kind="metadata" srclang="en" default />
    Your browser does not support the video tag.
  </video>
  <canvas class="overlay"></canvas>
  <div>
    <button id="play">Play</button>
  </div>
  <div class="ctrl"></div>
  <script>
    const video = document.querySelector('video');
    const playButton = document.querySelector('#play');
    const track = video.querySelector('track');
    const ctrl = document.querySelector('.ctrl');
    const canvas = document.querySelector('.overlay');
    const ctx = canvas.getContext('2d');
    const hashPrefix = '#:video:';

    function getReplayMode() {
      const replayMode = window.location.hash.startsWith(hashPrefix);
      if (replayMode) {
        const hash = window.location.hash.slice(hashPrefix.length);
        const parts = hash.split('=');
        const startTime = parseFloat(parts[0]);
        const ids = parts[1].split(',');
        return {replayMode, startTime, ids};
      }
      return {replayMode, startTime: 0, ids: []};
    }

    const {replayMode, startTime, ids} = getReplayMode();

    playButton.addEventListener('click', () => {
      if (video.paused) {
        video.play();
        playButton.textContent = 'Pause';
      } else {
        video.pause();
        playButton.textContent = 'Play';
      }
    });

    video.addEventListener('canplay', () => {
      video.currentTime = startTime;
    });

    video.addEventListener('play', () => {
      if (replayMode) {
        canvas.style.display = 'block';
        ctrl.style.display = 'none';
      } else {
        canvas.style.display = 'none';
        ctrl.style.display = 'none';
      }
    });
    video.addEventListener('pause', () => {
      if (!replayMode) {
        canvas.style.display = 'block';
        ctrl.style.display = 'block';
      }
    });
    video.addEventListener('ended', () => {
      if (!replayMode) {
        canvas.style.display = 'none';
        ctrl.style.display = 'none';
      }
    });

    track.addEventListener('cuechange', () => {
      ctx.beginPath();
      const width = video.clientWidth;
      const height = video.clientHeight;
      canvas.width = width;
      canvas.height = height;
      ctx.clearRect(0, 0, width, height);
      ctx.strokeStyle = 'red';
      ctx.lineWidth = 4;
      ctx.fillStyle = 'red';
      ctx.font = "20px serif";
      ctrl.innerHTML = '';

      const cues = track.track.activeCues;
      if (!cues || cues.length === 0) {
        return;
      }
      const metadataList = JSON.parse(cues[0].text);
      const form = document.createElement('form');
      for (const metadata of metadataList) {
        const {name, boxes, id} = metadata;
        if (replayMode && !ids.includes(id)) {
          continue;
        }
        for (const box of boxes) {
          const x = box.Left * width;
          const y = box.Top * height;
          const w = box.Width * width;
          const h = box.Height * height;
          ctx.strokeRect(x, y, w, h);
          ctx.fillText(name, x, y - 4);
        }
        const input = document.createElement('input');
        input.type = 'checkbox';
        input.id = id;
        input.addEventListener('change', () => {
          const checkedList = form.querySelectorAll('input[type="checkbox"]:checked');
          const button = form.querySelector('#copy-link');
          button.disabled = checkedList.length === 0;
        });
        const label = document.createElement('label');
        label.textContent = name;
        label.appendChild(input);
        const div = document.createElement('div');
        div.appendChild(label);
        form.appendChild(div);
      }
      const button = document.createElement('button');
      button.textContent = 'Copy Link';
      button.disabled = true;
      button.id = 'copy-link';
      const div = document.createElement('div');
      div.appendChild(button);
      form.appendChild(div);
      button.addEventListener('click', (e) => {
        e.preventDefault();
        const checkedList = form.querySelectorAll('input[type="checkbox"]:checked');
        const picked = Array.from(checkedList).map(input => input.id);
        const url = window.location.href + hashPrefix + video.currentTime + '=' + picked.join(',');
        navigator.clipboard.writeText(url);
        console.log(url);
      });
      ctrl.appendChild(form);
    });
  </script>
</body>
</html>
`))

// RenderViewer produces the player page for a video and its subtitle track.
// Both paths are relative to wherever the page is hosted; the artifact
// publisher passes "./hls/<base>.m3u8" and "./<base>.vtt" so the page works
// straight out of the output bucket.
func RenderViewer(videoPath, trackPath string) (string, error) {
	var b strings.Builder
	data := struct {
		VideoPath string
		TrackPath string
	}{VideoPath: videoPath, TrackPath: trackPath}
	if err := viewerPage.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render viewer page: %w", err)
	}
	return b.String(), nil
}
