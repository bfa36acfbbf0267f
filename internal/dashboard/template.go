package dashboard

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Credit Risk Prediction</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
        .layout { display: flex; gap: 20px; max-width: 1200px; margin: 0 auto; align-items: flex-start; }
        .sidebar { width: 280px; flex-shrink: 0; background: white; border-radius: 10px; padding: 20px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
        .sidebar h3 { margin-top: 0; color: #333; border-bottom: 2px solid #eee; padding-bottom: 8px; }
        .main { flex: 1; min-width: 0; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 10px; margin-bottom: 20px; }
        .header h1 { margin: 0 0 10px 0; font-size: 2em; }
        .card { background: white; border-radius: 10px; padding: 20px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); margin-bottom: 20px; }
        .card h2 { margin-top: 0; color: #333; border-bottom: 2px solid #eee; padding-bottom: 10px; }
        .grid { display: grid; grid-template-columns: repeat(2, 1fr); gap: 16px; }
        .field label { display: block; font-weight: 500; color: #666; margin-bottom: 4px; }
        .field input { width: 100%; box-sizing: border-box; padding: 8px; border: 1px solid #ccc; border-radius: 4px; }
        .field small { color: #999; }
        button { margin-top: 20px; padding: 10px 20px; border: none; border-radius: 6px; background: #667eea; color: white; font-size: 1em; cursor: pointer; }
        .alert { padding: 12px 16px; border-radius: 6px; margin: 12px 0; font-weight: 500; }
        .alert-success { background-color: #d4edda; color: #155724; }
        .alert-warning { background-color: #fff3cd; color: #856404; }
        .alert-error { background-color: #f8d7da; color: #721c24; }
        .metric-label { color: #666; }
        .large-metric { font-size: 2em; font-weight: bold; margin: 6px 0 12px 0; }
        .factors { display: grid; grid-template-columns: 1fr 1fr; gap: 16px; }
        .factors ul, .importance ul { padding-left: 18px; }
        .metric-positive { color: #dc3545; }
        .metric-negative { color: #28a745; }
        .footer { max-width: 1200px; margin: 20px auto 0 auto; border-top: 1px solid #ddd; padding-top: 10px; color: #888; font-size: 0.85em; }
    </style>
</head>
<body>
<div class="layout">
    <div class="sidebar">
        <h3>Application Info</h3>
        <p><strong>Model:</strong> LightGBM</p>
        <p><strong>Dataset:</strong> UCI Credit Card Default Dataset</p>
        <p><strong>Purpose:</strong> Credit card default risk prediction</p>

        <h3>How to Use</h3>
        <ol>
            <li>Fill in the customer form</li>
            <li>Click "Calculate Default Risk"</li>
            <li>Review the result and its explanation</li>
        </ol>

        {{if not .Loaded}}
        <h3>Attention</h3>
        {{if .Load.Corrupt}}
        <div class="alert alert-error" id="load-corrupt">
            {{.Load.Notice}}
            <p>Replace '{{.ModelFile}}' and '{{.FeaturesFile}}' with valid files and restart the server.</p>
        </div>
        {{else}}
        <div class="alert alert-error" id="load-missing">
            Model files not found!
            <p>Required files:</p>
            <ul>
                <li>{{.ModelFile}}</li>
                <li>{{.FeaturesFile}}</li>
            </ul>
            <p>Place these files in the artifact directory and restart the server.</p>
        </div>
        {{end}}
        {{end}}
    </div>

    <div class="main">
        <div class="header">
            <h1>Credit Risk Prediction</h1>
            <div>Use this application to estimate the probability that a credit card customer will default.
            Predictions are made with a <strong>LightGBM</strong> machine learning model.</div>
        </div>

        {{if not .Loaded}}
        {{if .Load.Corrupt}}
        <div class="alert alert-error">{{.Load.Notice}}</div>
        {{else}}
        <div class="alert alert-error">Model files not found! Make sure '{{.ModelFile}}' and '{{.FeaturesFile}}' are in the artifact directory.</div>
        {{end}}
        {{end}}

        <div class="card">
            <h2>Enter Customer Information</h2>
            <form method="POST" action="/">
                <div class="grid">
                {{range .Fields}}
                    <div class="field">
                        <label for="{{.Spec.Feature}}">{{.Spec.Label}}</label>
                        <input type="number" id="{{.Spec.Feature}}" name="{{.Spec.Feature}}" value="{{.Value}}" step="{{.Spec.StepAttr}}"{{with .Spec.MinAttr}} min="{{.}}"{{end}}{{with .Spec.MaxAttr}} max="{{.}}"{{end}} required>
                        <small>{{.Spec.Describe}}</small>
                    </div>
                {{end}}
                </div>
                <button type="submit">Calculate Default Risk</button>
            </form>
        </div>

        {{if .Error}}
        <div class="alert alert-error" id="error">{{.Error}}</div>
        {{end}}

        {{with .Result}}
        <div class="card" id="result">
            <h2>Prediction Result</h2>
            <div class="metric-label">Default Probability</div>
            <div class="large-metric">{{percent .Prediction.Probability}}</div>
            <div class="alert alert-{{.Severity}}" id="tier" data-tier="{{.Tier}}">{{.Message}}</div>
        </div>

        <div class="card" id="explanation">
            <h2>Model Explanation</h2>
            {{if eq .Explanation.Kind "signed"}}
            <p>Factors affecting this prediction:</p>
            <div class="factors">
                <div>
                    <strong>Factors Increasing Risk:</strong>
                    <ul id="positive">
                    {{range .Explanation.Positive}}<li class="metric-positive">{{.Label}}: {{signed .Value}}</li>
                    {{end}}
                    </ul>
                </div>
                <div>
                    <strong>Factors Decreasing Risk:</strong>
                    <ul id="negative">
                    {{range .Explanation.Negative}}<li class="metric-negative">{{.Label}}: {{signed .Value}}</li>
                    {{end}}
                    </ul>
                </div>
            </div>
            {{with .Chart}}
            <svg xmlns="http://www.w3.org/2000/svg" width="100%" viewBox="0 0 {{.Width}} {{.Height}}" role="img" aria-label="Feature impact chart">
                <text x="{{.TitleX}}" y="18" text-anchor="middle" font-size="14" font-weight="bold">Feature Impact on the Risk Prediction</text>
                {{range .Rows}}
                <text x="{{$.Result.Chart.LabelX}}" y="{{.TextY}}" text-anchor="end" font-size="12">{{.Label}}</text>
                <rect x="{{.BarX}}" y="{{.Y}}" width="{{.BarWidth}}" height="18" fill="{{.Color}}" fill-opacity="0.7"></rect>
                <text x="{{.TextX}}" y="{{.TextY}}" text-anchor="{{.Anchor}}" font-size="11">{{.Text}}</text>
                {{end}}
                <line x1="{{.AxisX}}" y1="{{.AxisY1}}" x2="{{.AxisX}}" y2="{{.AxisY2}}" stroke="black" stroke-width="0.5"></line>
                <text x="{{.TitleX}}" y="{{.XTitleY}}" text-anchor="middle" font-size="12">Attribution value (impact on risk, log-odds)</text>
            </svg>
            {{end}}
            {{else if eq .Explanation.Kind "importance"}}
            <div class="alert alert-warning">{{.Explanation.Message}}</div>
            <div class="importance">
                <strong>Model Feature Importances:</strong>
                <ul id="importance">
                {{range .Explanation.Importance}}<li>{{.Label}}: {{score .Value}}</li>
                {{end}}
                </ul>
            </div>
            {{else}}
            <div class="alert alert-warning">{{.Explanation.Message}}</div>
            {{end}}
        </div>
        {{end}}
    </div>
</div>
<div class="footer">This application is for educational purposes only. Real credit decisions require a professional evaluation.</div>
</body>
</html>
`
